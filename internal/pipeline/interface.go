package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/study-flow/internal/llm"
	"github.com/nguyentantai21042004/study-flow/internal/quiz"
	"github.com/nguyentantai21042004/study-flow/internal/router"
)

// Pipeline runs the generation stages. Every stage reads its input from a
// persisted artifact path, so each one can be re-run on its own.
type Pipeline interface {
	// Fetch downloads remote audio into the media root.
	Fetch(ctx context.Context, url string) (Outcome, error)
	// Ingest routes a source file and saves its transcript.
	Ingest(ctx context.Context, sourcePath string) (router.Result, Outcome, error)
	SaveTranscript(ctx context.Context, res router.Result) (Outcome, error)

	// StreamDocument starts a streamed document-source generation. The
	// upstream request is made when the stream is first read.
	StreamDocument(ctx context.Context, transcriptPath string, opts DocumentOptions) (*llm.Stream, error)
	// CompileDocument persists source (fences stripped) and compiles it.
	CompileDocument(ctx context.Context, transcriptPath, source string) (Outcome, error)
	GenerateDocument(ctx context.Context, transcriptPath string, opts DocumentOptions) (Outcome, error)

	GenerateScript(ctx context.Context, textPath string, style ScriptStyle) (Outcome, error)
	Synthesize(ctx context.Context, textPath string, opts SynthesisOptions) (Outcome, error)
	GenerateQuiz(ctx context.Context, sourcePath string, opts QuizOptions) (Outcome, *quiz.Document, error)
	ExportDocx(ctx context.Context, textPath string) (Outcome, error)
}
