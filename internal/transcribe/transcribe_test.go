package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

func TestValidateSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		wantErr  bool
	}{
		{name: "empty", segments: nil, wantErr: false},
		{name: "ordered", segments: []Segment{{0, 1, "a"}, {1, 2, "b"}, {1, 3, "c"}}, wantErr: false},
		{name: "zero length", segments: []Segment{{2, 2, "a"}}, wantErr: false},
		{name: "inverted range", segments: []Segment{{3, 1, "a"}}, wantErr: true},
		{name: "decreasing start", segments: []Segment{{5, 6, "a"}, {4, 7, "b"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSegments(tt.segments)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSegments() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseWhisperJSON(t *testing.T) {
	data := []byte(`{
		"result": {"language": "en"},
		"transcription": [
			{"offsets": {"from": 2500, "to": 4000}, "text": " world"},
			{"offsets": {"from": 0, "to": 2500}, "text": " Hello"},
			{"offsets": {"from": 4000, "to": 3000}, "text": " again"}
		]
	}`)

	tr, err := parseWhisperJSON(data)
	if err != nil {
		t.Fatalf("parseWhisperJSON() error = %v", err)
	}
	if err := ValidateSegments(tr.Segments); err != nil {
		t.Errorf("segments not normalized: %v", err)
	}
	if tr.Text != "Hello world again" {
		t.Errorf("Text = %q", tr.Text)
	}
	if tr.Segments[0].Start != 0 || tr.Segments[1].Start != 2.5 {
		t.Errorf("Segments = %+v", tr.Segments)
	}
	if tr.Language != "en" {
		t.Errorf("Language = %q", tr.Language)
	}
}

type jsonWritingExecutor struct {
	args []string
	body string
	err  error
}

func (e *jsonWritingExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	e.args = args
	if e.err != nil {
		return "", e.err
	}
	for i, a := range args {
		if a == "-of" {
			return "", os.WriteFile(args[i+1]+".json", []byte(e.body), 0644)
		}
	}
	return "", nil
}

func (e *jsonWritingExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return e.Execute(ctx, name, args...)
}

func TestWhisperTranscribe(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "lecture.wav")
	exec := &jsonWritingExecutor{body: `{"transcription":[{"offsets":{"from":0,"to":1000},"text":"hi"}]}`}
	cfg := config.WhisperConfig{ModelPath: "m.bin", BinaryPath: "whisper-cli", Language: "en", Threads: 4}

	tr, err := NewWhisper(cfg, exec, logger.Nop()).Transcribe(context.Background(), wav, "")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if tr.Text != "hi" || tr.Language != "en" {
		t.Errorf("Transcript = %+v", tr)
	}
	if !strings.Contains(strings.Join(exec.args, " "), "-f "+wav) {
		t.Errorf("args %v do not reference the waveform", exec.args)
	}
	if _, err := os.Stat(strings.TrimSuffix(wav, ".wav") + ".json"); !os.IsNotExist(err) {
		t.Error("whisper json output was not cleaned up")
	}
}

func TestWhisperMissingBinary(t *testing.T) {
	exec := &jsonWritingExecutor{err: errors.New("executable file not found")}
	_, err := NewWhisper(config.WhisperConfig{}, exec, logger.Nop()).Transcribe(context.Background(), "a.wav", "en")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("error = %v, want ErrProviderUnavailable", err)
	}
}

func TestHTTPTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		data, _ := io.ReadAll(f)
		if string(data) != "RIFF" {
			t.Errorf("uploaded %q", data)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"text":     " Bonjour le monde ",
			"language": "fr",
			"segments": []map[string]any{{"start": 0.0, "end": 1.2, "text": "Bonjour le monde"}},
		})
	}))
	defer srv.Close()

	wav := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.WhisperConfig{Endpoint: srv.URL + "/v1/", Model: "whisper-1"}
	tr, err := NewHTTP(cfg, srv.Client(), logger.Nop()).Transcribe(context.Background(), wav, "fr")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if tr.Text != "Bonjour le monde" || len(tr.Segments) != 1 {
		t.Errorf("Transcript = %+v", tr)
	}
}

func TestHTTPTranscribeUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	wav := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewHTTP(config.WhisperConfig{Endpoint: srv.URL}, srv.Client(), logger.Nop()).Transcribe(context.Background(), wav, "")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("error = %v, want ErrProviderUnavailable", err)
	}
}
