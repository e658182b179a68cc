package pipeline

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
)

// ExportDocx renders the text at textPath as <base>_<ts>.docx under the render root.
func (p *implPipeline) ExportDocx(ctx context.Context, textPath string) (Outcome, error) {
	out := Outcome{Stage: StageExport}
	if p.exporter == nil {
		return out.fail(errors.New("no exporter configured"))
	}

	text, err := readText(textPath)
	if err != nil {
		return out.fail(err)
	}

	base := artifact.BaseName(textPath)
	path, err := p.store.NewPath(artifact.RootRender, artifact.Name{Base: base, Ext: ".docx"})
	if err != nil {
		return out.fail(err)
	}
	if err := p.exporter.Docx(ctx, base, text, path); err != nil {
		discard(path)
		return out.fail(err)
	}
	out.add(path)
	p.record(ctx, StageExport, path, textPath)

	return out.succeed(path)
}
