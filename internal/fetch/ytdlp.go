package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrInvalidURL is returned for anything that is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid url")

func (f *implYTDLP) Fetch(ctx context.Context, rawURL, outputTemplate string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	outputPath := outputTemplate + ".wav"
	args := []string{
		"-f", "bestaudio/best",
		"--no-playlist",
		"--force-overwrites",
		"--user-agent", userAgent,
		"-x",
		"--audio-format", "wav",
		"-o", outputTemplate + ".%(ext)s",
		rawURL,
	}

	f.logger.Info(ctx, "Downloading audio from %s", rawURL)

	if _, err := f.executor.Execute(context.WithoutCancel(ctx), f.binary, args...); err != nil {
		var exitErr *executor.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("yt-dlp exited with code %d: %s", exitErr.ExitCode, lastLine(exitErr.Stderr))
		}
		return "", fmt.Errorf("run yt-dlp: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", fmt.Errorf("downloaded audio not found at %s: %w", outputPath, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("downloaded audio at %s is empty", outputPath)
	}

	f.logger.Info(ctx, "Audio saved: %s", outputPath)
	return outputPath, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
