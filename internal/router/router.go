package router

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/transcribe"
)

func (r *implRouter) Route(ctx context.Context, path string) (Result, error) {
	kind, err := Classify(path)
	if err != nil {
		return nil, err
	}

	r.logger.Info(ctx, "Routing %s as %s", path, kind)

	switch kind {
	case KindMedia:
		return r.routeMedia(ctx, path)
	case KindDocument:
		return r.routeDocument(ctx, path)
	default:
		return nil, ErrUnhandledKind
	}
}

// routeMedia always transcribes the canonical waveform, converting first
// unless the input already is one.
func (r *implRouter) routeMedia(ctx context.Context, path string) (*MediaResult, error) {
	wavPath := path
	if strings.ToLower(filepath.Ext(path)) != canonicalExt {
		converted, err := r.converter.Convert(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		wavPath = converted
	}

	t, err := r.transcriber.Transcribe(ctx, wavPath, r.language)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if err := transcribe.ValidateSegments(t.Segments); err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	return &MediaResult{
		FullText:            t.Text,
		Language:            t.Language,
		Segments:            t.Segments,
		NormalizedAudioPath: wavPath,
		SourcePath:          path,
	}, nil
}

func (r *implRouter) routeDocument(ctx context.Context, path string) (*DocumentResult, error) {
	text, err := r.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{ExtractedText: text, SourcePath: path}, nil
}
