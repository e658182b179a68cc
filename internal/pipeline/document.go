package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/llm"
)

func (p *implPipeline) StreamDocument(ctx context.Context, transcriptPath string, opts DocumentOptions) (*llm.Stream, error) {
	text, err := readText(transcriptPath)
	if err != nil {
		return nil, err
	}

	model := opts.Model
	if model == "" {
		model = p.opts.DocumentModel
	}

	p.logger.Info(ctx, "Generating document source from %s with %s", transcriptPath, model)
	return p.generator.Stream(ctx, llm.Request{
		Model:  model,
		System: documentSystemPrompt,
		Prompt: fmt.Sprintf(documentUserPrompt, text),
	})
}

// CompileDocument writes <base>_Summary_<ts>.tex under the render root and
// compiles it next to itself. The .tex stays in Artifacts when compilation fails.
func (p *implPipeline) CompileDocument(ctx context.Context, transcriptPath, source string) (Outcome, error) {
	out := Outcome{Stage: StageDocument}

	source = StripFences(source)
	if source == "" {
		return out.fail(fmt.Errorf("document source: %w", ErrEmptyInput))
	}

	texPath, err := p.write(artifact.RootRender, artifact.Name{
		Base: artifact.BaseName(transcriptPath),
		Tag:  "Summary",
		Ext:  ".tex",
	}, []byte(source))
	if err != nil {
		return out.fail(err)
	}
	out.add(texPath)
	p.record(ctx, StageDocument, texPath, transcriptPath)

	out.Stage = StageCompile
	pdfPath, err := p.compiler.Compile(ctx, texPath, filepath.Dir(texPath))
	if err != nil {
		p.logger.Error(ctx, "Compilation failed for %s: %v", texPath, err)
		return out.fail(err)
	}
	out.add(pdfPath)
	p.record(ctx, StageCompile, pdfPath, texPath)

	p.logger.Info(ctx, "Document compiled: %s", pdfPath)
	return out.succeed(pdfPath)
}

// GenerateDocument is the blocking form: stream, collect, strip and compile.
func (p *implPipeline) GenerateDocument(ctx context.Context, transcriptPath string, opts DocumentOptions) (Outcome, error) {
	stream, err := p.StreamDocument(ctx, transcriptPath, opts)
	if err != nil {
		return Outcome{Stage: StageDocument}.fail(err)
	}
	defer stream.Close()

	source, err := stream.Collect()
	if err != nil {
		return Outcome{Stage: StageDocument}.fail(fmt.Errorf("generate document: %w", err))
	}
	return p.CompileDocument(ctx, transcriptPath, source)
}
