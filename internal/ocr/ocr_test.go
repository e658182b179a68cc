package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

type stubVision struct {
	text string
	err  error
	mime string
}

func (s *stubVision) Describe(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error) {
	s.mime = mimeType
	return s.text, s.err
}

func TestTranscribe(t *testing.T) {
	tests := []struct {
		name        string
		vision      *stubVision
		image       []byte
		want        string
		wantFailure bool
	}{
		{
			name:   "success is trimmed",
			vision: &stubVision{text: "  E = mc^2\n"},
			image:  []byte{1},
			want:   "E = mc^2",
		},
		{
			name:        "provider failure becomes marker",
			vision:      &stubVision{err: errors.New("status 429")},
			image:       []byte{1},
			want:        "[OCR Error: status 429]",
			wantFailure: true,
		},
		{
			name:        "empty image",
			vision:      &stubVision{text: "never"},
			image:       nil,
			want:        "[OCR Error: empty image]",
			wantFailure: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.vision, "vision-model", logger.Nop()).Transcribe(context.Background(), tt.image, "image/png")
			if got != tt.want {
				t.Errorf("Transcribe() = %q, want %q", got, tt.want)
			}
			if IsFailure(got) != tt.wantFailure {
				t.Errorf("IsFailure(%q) = %v", got, IsFailure(got))
			}
		})
	}
}

func TestMimeType(t *testing.T) {
	tests := map[string]string{
		".png":  "image/png",
		"JPG":   "image/jpeg",
		".jpeg": "image/jpeg",
		"webp":  "image/webp",
		".xyz":  "image/png",
	}
	for ext, want := range tests {
		if got := MimeType(ext); got != want {
			t.Errorf("MimeType(%q) = %q, want %q", ext, got, want)
		}
	}
}
