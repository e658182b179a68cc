package pipeline

import "errors"

// Stage names a step of the pipeline. It is also the Stage of the lineage
// records the step writes.
type Stage string

const (
	StageFetch      Stage = "fetch"
	StageTranscript Stage = "transcript"
	StageDocument   Stage = "document"
	StageCompile    Stage = "compile"
	StageScript     Stage = "script"
	StageSynthesis  Stage = "synthesis"
	StageQuiz       Stage = "quiz"
	StageExport     Stage = "export"
)

// ScriptStyle selects the speech-oriented rewrite applied before synthesis.
type ScriptStyle string

const (
	ScriptNone    ScriptStyle = ""
	ScriptPodcast ScriptStyle = "podcast"
	ScriptSummary ScriptStyle = "summary"
)

var (
	// ErrEmptyInput is returned when a stage's input artifact has no text.
	ErrEmptyInput = errors.New("input is empty")
	// ErrNoAudio is returned when the synthesizer produced zero chunks.
	ErrNoAudio = errors.New("synthesizer produced no audio")

	ErrUnknownStyle = errors.New("unknown script style")
)

// Outcome is the envelope every stage returns. Artifacts lists every file
// the call committed, in order, including ones written before a failure.
// ArtifactKey is the stage's primary output and is empty on failure.
type Outcome struct {
	Success     bool
	Stage       Stage
	ArtifactKey string
	Artifacts   []string
	Err         error
}

func (o *Outcome) add(path string) {
	o.Artifacts = append(o.Artifacts, path)
}

func (o Outcome) succeed(key string) (Outcome, error) {
	o.Success = true
	o.ArtifactKey = key
	return o, nil
}

func (o Outcome) fail(err error) (Outcome, error) {
	o.Success = false
	o.Err = err
	return o, err
}

type DocumentOptions struct {
	// Model overrides the configured document model.
	Model string
}

type SynthesisOptions struct {
	Voice string
	Speed float64
	// Script, when set, rewrites the text in that style before synthesis.
	Script ScriptStyle
}

type QuizOptions struct {
	Model     string
	Questions int
}
