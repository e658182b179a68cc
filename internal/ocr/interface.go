package ocr

import "context"

// Engine transcribes one image. It never fails: a provider error is returned
// as an inline "[OCR Error: ...]" marker so the caller keeps the rest of its content.
type Engine interface {
	Transcribe(ctx context.Context, image []byte, mimeType string) string
}
