package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/router"
	"github.com/nguyentantai21042004/study-flow/internal/transcribe"
)

func (p *implPipeline) Fetch(ctx context.Context, url string) (Outcome, error) {
	out := Outcome{Stage: StageFetch}
	if p.fetcher == nil {
		return out.fail(errors.New("no fetcher configured"))
	}

	reserved, err := p.store.NewPath(artifact.RootMedia, artifact.Name{Base: "youtube_download", Ext: ".wav"})
	if err != nil {
		return out.fail(err)
	}

	path, err := p.fetcher.Fetch(ctx, url, strings.TrimSuffix(reserved, ".wav"))
	if err != nil {
		discard(reserved)
		p.logger.Error(ctx, "Fetch failed for %s: %v", url, err)
		return out.fail(err)
	}
	out.add(path)
	p.record(ctx, StageFetch, path, url)

	p.logger.Info(ctx, "Fetched %s -> %s", url, path)
	return out.succeed(path)
}

func (p *implPipeline) Ingest(ctx context.Context, sourcePath string) (router.Result, Outcome, error) {
	res, err := p.router.Route(ctx, sourcePath)
	if err != nil {
		out, _ := Outcome{Stage: StageTranscript}.fail(err)
		return nil, out, err
	}
	out, err := p.SaveTranscript(ctx, res)
	return res, out, err
}

// SaveTranscript writes the routed text. Media results also get a
// <transcript>_timestamped.txt companion with one line per segment.
func (p *implPipeline) SaveTranscript(ctx context.Context, res router.Result) (Outcome, error) {
	out := Outcome{Stage: StageTranscript}
	base := artifact.BaseName(res.Source())

	switch r := res.(type) {
	case *router.MediaResult:
		path, err := p.write(artifact.RootTranscript, artifact.Name{Base: base, Tag: "transcript", Ext: ".txt"}, []byte(r.FullText))
		if err != nil {
			return out.fail(err)
		}
		out.add(path)
		p.record(ctx, StageTranscript, path, r.SourcePath)

		stamped := TimestampedPath(path)
		if err := writeFile(stamped, FormatTimestamped(r.Segments)); err != nil {
			return out.fail(err)
		}
		out.add(stamped)
		p.record(ctx, StageTranscript, stamped, r.SourcePath)

		p.logger.Info(ctx, "Transcript saved: %s (%d segments)", path, len(r.Segments))
		return out.succeed(path)

	case *router.DocumentResult:
		path, err := p.write(artifact.RootTranscript, artifact.Name{Base: base, Tag: "ocr", Ext: ".txt"}, []byte(r.ExtractedText))
		if err != nil {
			return out.fail(err)
		}
		out.add(path)
		p.record(ctx, StageTranscript, path, r.SourcePath)

		p.logger.Info(ctx, "Extracted text saved: %s", path)
		return out.succeed(path)

	default:
		return out.fail(fmt.Errorf("%w: %T", router.ErrUnhandledKind, res))
	}
}

// TimestampedPath is the companion file of a plain transcript.
func TimestampedPath(transcriptPath string) string {
	return strings.TrimSuffix(transcriptPath, ".txt") + "_timestamped.txt"
}

// FormatTimestamped renders one "[HH:MM:SS --> HH:MM:SS] text" line per segment.
func FormatTimestamped(segments []transcribe.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		fmt.Fprintf(&b, "[%s --> %s] %s\n", FormatTimestamp(s.Start), FormatTimestamp(s.End), strings.TrimSpace(s.Text))
	}
	return b.String()
}

// FormatTimestamp renders seconds as HH:MM:SS, truncating fractions.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
