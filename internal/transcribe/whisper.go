package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe runs whisper.cpp with JSON output and reads back the segments.
func (w *implWhisper) Transcribe(ctx context.Context, wavPath, language string) (*Transcript, error) {
	// Whisper appends .json to the prefix
	outputPrefix := strings.TrimSuffix(wavPath, filepath.Ext(wavPath))
	if language == "" {
		language = w.cfg.Language
	}

	w.logger.Info(ctx, "Starting transcription with %d threads: %s", w.cfg.Threads, wavPath)

	// -oj: JSON output with per-segment millisecond offsets
	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", wavPath,
		"-l", language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"-oj",
		"-of", outputPrefix,
	}
	if w.cfg.Prompt != "" {
		args = append(args, "--prompt", w.cfg.Prompt)
	}

	if _, err := w.executor.Execute(ctx, w.cfg.BinaryPath, args...); err != nil {
		var exitErr *executor.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("whisper transcribe: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	jsonPath := outputPrefix + ".json"
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	defer func() {
		if err := os.Remove(jsonPath); err != nil {
			w.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", jsonPath, err)
		}
	}()

	t, err := parseWhisperJSON(data)
	if err != nil {
		return nil, err
	}
	if t.Language == "" {
		t.Language = language
	}

	w.logger.Info(ctx, "Transcription completed: %d segments", len(t.Segments))
	return t, nil
}

func parseWhisperJSON(data []byte) (*Transcript, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}

	segments := make([]Segment, 0, len(out.Transcription))
	for _, s := range out.Transcription {
		segments = append(segments, Segment{
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
			Text:  s.Text,
		})
	}
	segments = normalize(segments)

	return &Transcript{
		Text:     joinSegments(segments),
		Language: out.Result.Language,
		Segments: segments,
	}, nil
}
