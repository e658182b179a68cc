package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
)

type speechRequest struct {
	Model          string  `json:"model,omitempty"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	ResponseFormat string  `json:"response_format"`
}

func (h *implHTTP) SampleRate() int {
	return h.sampleRate
}

// Synthesize issues one request per text chunk lazily, as the caller ranges.
func (h *implHTTP) Synthesize(ctx context.Context, text, voice string, speed float64) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}
		parts, err := h.splitter.SplitText(text)
		if err != nil {
			yield(nil, fmt.Errorf("split text: %w", err))
			return
		}

		h.logger.Info(ctx, "Synthesizing %d text chunks with voice %s", len(parts), voice)

		for i, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			pcm, err := h.speak(ctx, part, voice, speed)
			if err != nil {
				yield(nil, fmt.Errorf("chunk %d: %w", i+1, err))
				return
			}
			if len(pcm) == 0 {
				continue
			}
			if !yield(pcm, nil) {
				return
			}
		}
	}
}

func (h *implHTTP) speak(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(speechRequest{
		Model:          h.model,
		Input:          text,
		Voice:          voice,
		Speed:          speed,
		ResponseFormat: "pcm",
	}); err != nil {
		return nil, fmt.Errorf("encode speech payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+"/audio/speech", buf)
	if err != nil {
		return nil, fmt.Errorf("create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
		}
		return nil, fmt.Errorf("speech api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return io.ReadAll(resp.Body)
}
