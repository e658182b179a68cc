package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/ocr"
)

// ErrExtractionFailed is returned when a file cannot be read at all or yields no content.
var ErrExtractionFailed = errors.New("extraction failed")

const (
	imageHeading = "[Image Content Analysis]:"
	blockSep     = "\n\n"
)

func (e *implExtractor) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	e.logger.Info(ctx, "Extracting %s", path)

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = e.extractPDF(ctx, path)
	case ".pptx":
		text, err = e.extractPPTX(ctx, path)
	case ".docx":
		text, err = e.extractDOCX(ctx, path)
	case ".png", ".jpg", ".jpeg", ".webp":
		text, err = e.extractImage(ctx, path, ext)
	default:
		return "", fmt.Errorf("%w: unsupported document type %q", ErrExtractionFailed, ext)
	}
	if err != nil {
		if errors.Is(err, ErrExtractionFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %v", ErrExtractionFailed, filepath.Base(path), err)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no content could be extracted from %s", ErrExtractionFailed, filepath.Base(path))
	}

	e.logger.Info(ctx, "Extracted %d characters from %s", len(text), path)
	return text, nil
}

// extractImage is a single OCR call with no page loop and no section marker.
func (e *implExtractor) extractImage(ctx context.Context, path, ext string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text := e.ocr.Transcribe(ctx, data, ocr.MimeType(ext))
	if ocr.IsFailure(text) {
		return "", fmt.Errorf("%w: %s", ErrExtractionFailed, text)
	}
	return text, nil
}

// block renders one page/slide section: heading, native text, then OCR output.
func block(heading, text string, transcriptions []string) string {
	lines := []string{heading}
	if text != "" {
		lines = append(lines, text)
	}
	if len(transcriptions) > 0 {
		lines = append(lines, imageHeading)
		lines = append(lines, transcriptions...)
	}
	return strings.Join(lines, "\n")
}
