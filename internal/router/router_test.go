package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/transcribe"
)

type stubConverter struct {
	inputs []string
	err    error
}

func (s *stubConverter) Convert(ctx context.Context, in string) (string, error) {
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return "", s.err
	}
	return media.CanonicalPath(in), nil
}

type stubTranscriber struct {
	paths  []string
	result transcribe.Transcript
}

func (s *stubTranscriber) Transcribe(ctx context.Context, wav, lang string) (*transcribe.Transcript, error) {
	s.paths = append(s.paths, wav)
	t := s.result
	return &t, nil
}

type stubExtractor struct {
	paths []string
}

func (s *stubExtractor) Extract(ctx context.Context, p string) (string, error) {
	s.paths = append(s.paths, p)
	return "--- Slide 1 ---\nhello", nil
}

func newTestRouter() (*implRouter, *stubConverter, *stubTranscriber, *stubExtractor) {
	conv := &stubConverter{}
	tr := &stubTranscriber{result: transcribe.Transcript{
		Text:     "hello class",
		Segments: []transcribe.Segment{{Start: 0, End: 1, Text: "hello"}, {Start: 1, End: 2, Text: "class"}},
	}}
	ext := &stubExtractor{}
	r := New(conv, tr, ext, "en", logger.Nop()).(*implRouter)
	return r, conv, tr, ext
}

func TestClassify(t *testing.T) {
	mediaList := []string{"mp4", "avi", "mov", "mp3", "wav", "m4a", "mkv", "webm", "flv", "ogg"}
	docList := []string{"pdf", "pptx", "docx", "png", "jpg", "jpeg", "webp"}
	other := []string{"txt", "srt", "exe", "", "tar.gz"}

	for _, ext := range mediaList {
		for _, name := range []string{"f." + ext, "F." + strings.ToUpper(ext)} {
			if k, err := Classify(name); err != nil || k != KindMedia {
				t.Errorf("Classify(%q) = %v, %v; want media", name, k, err)
			}
		}
	}
	for _, ext := range docList {
		for _, name := range []string{"f." + ext, "F." + strings.ToUpper(ext)} {
			if k, err := Classify(name); err != nil || k != KindDocument {
				t.Errorf("Classify(%q) = %v, %v; want document", name, k, err)
			}
		}
	}
	for _, ext := range other {
		if _, err := Classify("f." + ext); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Classify(%q) error = %v, want ErrUnsupportedFormat", "f."+ext, err)
		}
	}
}

func TestRouteMediaConvertsFirst(t *testing.T) {
	r, conv, tr, ext := newTestRouter()

	res, err := r.Route(context.Background(), "lecture.mp4")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}

	if len(conv.inputs) != 1 || conv.inputs[0] != "lecture.mp4" {
		t.Errorf("converter inputs = %v, want one call with lecture.mp4", conv.inputs)
	}
	if len(tr.paths) != 1 || tr.paths[0] != "lecture.wav" {
		t.Errorf("transcriber paths = %v, want [lecture.wav]", tr.paths)
	}
	if len(ext.paths) != 0 {
		t.Errorf("extractor called for media input")
	}

	m, ok := res.(*MediaResult)
	if !ok || res.Kind() != KindMedia {
		t.Fatalf("Route() = %T, want *MediaResult", res)
	}
	if m.NormalizedAudioPath != "lecture.wav" || m.SourcePath != "lecture.mp4" {
		t.Errorf("MediaResult = %+v", m)
	}
	if err := transcribe.ValidateSegments(m.Segments); err != nil {
		t.Errorf("segments: %v", err)
	}
}

func TestRouteWavSkipsConversion(t *testing.T) {
	r, conv, tr, _ := newTestRouter()

	first, err := r.Route(context.Background(), "voice.WAV")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	second, err := r.Route(context.Background(), "voice.WAV")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}

	if len(conv.inputs) != 0 {
		t.Errorf("converter called for a canonical waveform: %v", conv.inputs)
	}
	if tr.paths[0] != "voice.WAV" {
		t.Errorf("transcriber path = %q", tr.paths[0])
	}

	a, _ := Text(first)
	b, _ := Text(second)
	if a != b {
		t.Errorf("re-routing changed text: %q vs %q", a, b)
	}
}

func TestRouteDocument(t *testing.T) {
	r, conv, tr, ext := newTestRouter()

	res, err := r.Route(context.Background(), "slides.PPTX")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if _, ok := res.(*DocumentResult); !ok {
		t.Fatalf("Route() = %T, want *DocumentResult", res)
	}
	if len(conv.inputs)+len(tr.paths) != 0 {
		t.Error("document routed through the media branch")
	}
	if len(ext.paths) != 1 {
		t.Errorf("extractor calls = %v", ext.paths)
	}
}

func TestRouteErrors(t *testing.T) {
	r, conv, _, _ := newTestRouter()

	if _, err := r.Route(context.Background(), "notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Route(.txt) error = %v, want ErrUnsupportedFormat", err)
	}

	conv.err = &media.ConversionError{ExitCode: 1, Log: "moov atom not found"}
	_, err := r.Route(context.Background(), "corrupt.mp4")
	var convErr *media.ConversionError
	if !errors.As(err, &convErr) || convErr.ExitCode != 1 {
		t.Errorf("Route() error = %v, want ConversionError", err)
	}
}

func TestRouteRejectsUnorderedSegments(t *testing.T) {
	r, _, tr, _ := newTestRouter()
	tr.result.Segments = []transcribe.Segment{{Start: 5, End: 6}, {Start: 1, End: 2}}

	if _, err := r.Route(context.Background(), "a.mp3"); err == nil {
		t.Error("Route() accepted segments out of order")
	}
}
