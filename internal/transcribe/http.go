package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Transcribe uploads the waveform and asks for verbose_json so segments come back.
func (h *implHTTP) Transcribe(ctx context.Context, wavPath, language string) (*Transcript, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	fields := map[string]string{
		"model":           h.model,
		"response_format": "verbose_json",
	}
	if language != "" {
		fields["language"] = language
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write %s field: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+"/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("create transcription request: %w", err)
	}
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	h.logger.Info(ctx, "Uploading %s for transcription", wavPath)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("transcription api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload Transcript
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	payload.Segments = normalize(payload.Segments)
	payload.Text = strings.TrimSpace(payload.Text)
	if payload.Text == "" {
		payload.Text = joinSegments(payload.Segments)
	}
	if payload.Language == "" {
		payload.Language = language
	}
	return &payload, nil
}
