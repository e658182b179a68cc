package router

import (
	"fmt"
	"path/filepath"
	"strings"
)

const canonicalExt = ".wav"

var (
	mediaExts = map[string]bool{
		".mp4": true, ".avi": true, ".mov": true, ".mp3": true, ".wav": true,
		".m4a": true, ".mkv": true, ".webm": true, ".flv": true, ".ogg": true,
	}
	documentExts = map[string]bool{
		".pdf": true, ".pptx": true, ".docx": true,
	}
	imageExts = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
	}
)

// Classify maps a path to its branch by extension alone, case-insensitively.
// File contents are never inspected.
func Classify(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case mediaExts[ext]:
		return KindMedia, nil
	case documentExts[ext], imageExts[ext]:
		return KindDocument, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Supported reports whether Classify accepts path.
func Supported(path string) bool {
	_, err := Classify(path)
	return err == nil
}

// IsImage reports whether path is a single raster image (document branch, one OCR call).
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}
