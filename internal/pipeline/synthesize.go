package pipeline

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/tts"
)

func audioTag(style ScriptStyle) string {
	switch style {
	case ScriptPodcast:
		return "Podcast_TTS"
	case ScriptSummary:
		return "Summary_TTS"
	default:
		return "TTS"
	}
}

// Synthesize narrates the text at textPath, optionally after a script
// rewrite. Chunks are written as one WAV in emission order, and only once
// the whole sequence has arrived. Zero chunks writes no file.
func (p *implPipeline) Synthesize(ctx context.Context, textPath string, opts SynthesisOptions) (Outcome, error) {
	out := Outcome{Stage: StageSynthesis}

	source := textPath
	if opts.Script != ScriptNone {
		scripted, err := p.GenerateScript(ctx, textPath, opts.Script)
		out.Artifacts = append(out.Artifacts, scripted.Artifacts...)
		if err != nil {
			out.Stage = StageScript
			return out.fail(err)
		}
		source = scripted.ArtifactKey
	}

	text, err := readText(source)
	if err != nil {
		return out.fail(err)
	}

	voice := opts.Voice
	if voice == "" {
		voice = p.opts.Voice
	}
	speed := opts.Speed
	if speed == 0 {
		speed = p.opts.Speed
	}

	var chunks [][]byte
	for pcm, err := range p.synthesizer.Synthesize(ctx, text, voice, speed) {
		if err != nil {
			p.logger.Error(ctx, "Synthesis failed after %d chunks: %v", len(chunks), err)
			return out.fail(fmt.Errorf("synthesize: %w", err))
		}
		chunks = append(chunks, pcm)
	}
	if len(chunks) == 0 {
		p.logger.Warn(ctx, "Synthesizer produced no audio for %s", source)
		return out.fail(ErrNoAudio)
	}

	wavPath, err := p.store.NewPath(artifact.RootTTS, artifact.Name{
		Base: artifact.BaseName(textPath),
		Tag:  audioTag(opts.Script),
		Ext:  ".wav",
	})
	if err != nil {
		return out.fail(err)
	}
	if err := tts.WriteWAV(wavPath, chunks, p.synthesizer.SampleRate()); err != nil {
		discard(wavPath)
		return out.fail(err)
	}
	out.add(wavPath)
	p.record(ctx, StageSynthesis, wavPath, source)

	p.logger.Info(ctx, "Audio saved: %s (%d chunks)", wavPath, len(chunks))
	return out.succeed(wavPath)
}
