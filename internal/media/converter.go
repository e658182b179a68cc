package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

// ConversionError carries the transcoder's exit code and error stream.
// ExitCode is -1 when the binary could not be started at all.
type ConversionError struct {
	ExitCode int
	Log      string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed (exit code %d): %s", e.ExitCode, e.Log)
}

// CanonicalPath is the waveform path written next to inputPath.
func CanonicalPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".wav"
}

// Convert writes <name>.wav alongside inputPath.
// The subprocess is not tied to ctx cancellation; once started it runs to completion.
func (c *implConverter) Convert(ctx context.Context, inputPath string) (string, error) {
	outputPath := CanonicalPath(inputPath)
	if outputPath == inputPath {
		return "", &ConversionError{ExitCode: -1, Log: "input is already a .wav file: " + inputPath}
	}

	c.logger.Info(ctx, "Converting to canonical waveform: %s", inputPath)

	// -vn: drop video, -acodec pcm_s16le: 16-bit PCM, -ar 16000 -ac 1: 16kHz mono
	args := []string{
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outputPath,
	}

	if _, err := c.executor.Execute(context.WithoutCancel(ctx), c.binary, args...); err != nil {
		var exitErr *executor.ExitError
		if errors.As(err, &exitErr) {
			c.logger.Error(ctx, "ffmpeg exited with code %d for %s", exitErr.ExitCode, inputPath)
			return "", &ConversionError{ExitCode: exitErr.ExitCode, Log: exitErr.Stderr}
		}
		return "", &ConversionError{ExitCode: -1, Log: err.Error()}
	}

	c.logger.Info(ctx, "Waveform written: %s", outputPath)
	return outputPath, nil
}
