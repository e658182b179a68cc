package ocr

import (
	"context"
	"fmt"
	"strings"
)

const (
	errorPrefix = "[OCR Error: "

	prompt = `You are an expert OCR assistant. Your task is to extract all visible text from the image accurately. If it's a technical diagram, describe the labels and relationships briefly.

Transcribe the text in this image.`
)

func (e *implEngine) Transcribe(ctx context.Context, image []byte, mimeType string) string {
	if len(image) == 0 {
		return Marker(fmt.Errorf("empty image"))
	}

	text, err := e.vision.Describe(ctx, e.model, prompt, image, mimeType)
	if err != nil {
		e.logger.Warn(ctx, "OCR call failed (%s, %d bytes): %v", mimeType, len(image), err)
		return Marker(err)
	}
	return strings.TrimSpace(text)
}

// Marker renders err as the inline failure text placed in an image's slot.
func Marker(err error) string {
	return errorPrefix + err.Error() + "]"
}

// IsFailure reports whether text is an inline failure marker.
func IsFailure(text string) bool {
	return strings.HasPrefix(text, errorPrefix)
}

// MimeType maps an image extension (with or without the dot) to its MIME type.
func MimeType(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tif", "tiff":
		return "image/tiff"
	case "emf":
		return "image/x-emf"
	case "wmf":
		return "image/x-wmf"
	default:
		return "image/png"
	}
}
