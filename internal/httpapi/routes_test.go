package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/llm"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
	"github.com/nguyentantai21042004/study-flow/internal/quiz"
	"github.com/nguyentantai21042004/study-flow/internal/tts"
)

type fakePipeline struct {
	pipeline.Pipeline
	stream      *llm.Stream
	quizErr     error
	synthErr    error
	synthCalled bool
}

func (f *fakePipeline) StreamDocument(ctx context.Context, path string, opts pipeline.DocumentOptions) (*llm.Stream, error) {
	return f.stream, nil
}

func (f *fakePipeline) GenerateQuiz(ctx context.Context, path string, opts pipeline.QuizOptions) (pipeline.Outcome, *quiz.Document, error) {
	if f.quizErr != nil {
		return pipeline.Outcome{Stage: pipeline.StageQuiz, Err: f.quizErr}, nil, f.quizErr
	}
	return pipeline.Outcome{Success: true, Stage: pipeline.StageQuiz, ArtifactKey: "/q/notes_Quiz.json"}, &quiz.Document{Title: "t"}, nil
}

func (f *fakePipeline) Synthesize(ctx context.Context, path string, opts pipeline.SynthesisOptions) (pipeline.Outcome, error) {
	f.synthCalled = true
	if f.synthErr != nil {
		return pipeline.Outcome{Stage: pipeline.StageSynthesis, Err: f.synthErr}, f.synthErr
	}
	return pipeline.Outcome{Success: true, Stage: pipeline.StageSynthesis, ArtifactKey: "/tts/notes_TTS.wav"}, nil
}

func setupTest(t *testing.T, p pipeline.Pipeline) (*gin.Engine, artifact.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	store, err := artifact.New(filepath.Join(dir, "data"), filepath.Join(dir, "lineage.db"), logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	srv := NewServer(config.ServerConfig{Port: "0"}, p, store, nil, logger.Nop())
	return srv.engine, store
}

func putFile(t *testing.T, store artifact.Store, root artifact.Root, name, content string) string {
	t.Helper()
	p, err := store.Put(root, name)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func doJSON(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("body is not JSON: %s", w.Body.String())
	}
	return m
}

func TestHealth(t *testing.T) {
	engine, _ := setupTest(t, &fakePipeline{})

	w := doJSON(engine, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode(t, w)["status"]; got != "ok" {
		t.Errorf("status field = %v", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		wantStatus int
	}{
		{"audio accepted", "lecture.mp3", http.StatusOK},
		{"pdf accepted", "slides.PDF", http.StatusOK},
		{"unsupported rejected", "notes.exe", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, store := setupTest(t, &fakePipeline{})

			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			fw, _ := mw.CreateFormFile("file", tt.filename)
			fw.Write([]byte("payload"))
			mw.Close()

			req := httptest.NewRequest(http.MethodPost, "/api/media/upload", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			path := decode(t, w)["path"].(string)
			if _, err := os.Stat(path); err != nil {
				t.Errorf("uploaded file missing: %v", err)
			}
			if _, err := store.Lookup(path); err != nil {
				t.Errorf("upload not recorded: %v", err)
			}
		})
	}
}

func TestUploadWithoutFile(t *testing.T) {
	engine, _ := setupTest(t, &fakePipeline{})

	w := doJSON(engine, http.MethodPost, "/api/media/upload", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGenerateQuizSchemaError(t *testing.T) {
	schemaErr := &quiz.SchemaError{Raw: `{"questions": []}`, Reason: "questions is empty"}
	engine, store := setupTest(t, &fakePipeline{quizErr: fmt.Errorf("parse quiz: %w", schemaErr)})
	putFile(t, store, artifact.RootRender, "notes_Summary.tex", `\section{A}`)

	w := doJSON(engine, http.MethodPost, "/api/quiz/generate", gin.H{"latex_path": "notes_Summary.tex"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["raw_response"] != schemaErr.Raw {
		t.Errorf("raw_response = %v", body["raw_response"])
	}
	if body["stage"] != string(pipeline.StageQuiz) {
		t.Errorf("stage = %v", body["stage"])
	}
}

func TestGenerateQuiz(t *testing.T) {
	engine, store := setupTest(t, &fakePipeline{})
	putFile(t, store, artifact.RootRender, "notes_Summary.tex", `\section{A}`)

	w := doJSON(engine, http.MethodPost, "/api/quiz/generate", gin.H{"latex_path": "notes_Summary.tex", "num_questions": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if decode(t, w)["quiz_filename"] != "notes_Quiz.json" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGenerateTTS(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		synthErr   error
		wantStatus int
		wantCalled bool
	}{
		{"plain transcript", "transcript", nil, http.StatusOK, true},
		{"unknown mode", "karaoke", nil, http.StatusBadRequest, false},
		{"provider down", "summary", fmt.Errorf("synthesize: %w", tts.ErrProviderUnavailable), http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakePipeline{synthErr: tt.synthErr}
			engine, store := setupTest(t, fp)
			putFile(t, store, artifact.RootTranscript, "talk_transcript.txt", "hello")

			w := doJSON(engine, http.MethodPost, "/api/tts/generate", gin.H{
				"transcript_path": "talk_transcript.txt",
				"tts_mode":        tt.mode,
			})
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if fp.synthCalled != tt.wantCalled {
				t.Errorf("synthesize called = %v, want %v", fp.synthCalled, tt.wantCalled)
			}
			if tt.wantStatus == http.StatusOK && decode(t, w)["audio_url"] != "/api/tts/download/notes_TTS.wav" {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestStreamLatex(t *testing.T) {
	fp := &fakePipeline{stream: llm.StreamOf(`\section{`, "Intro", "}")}
	engine, store := setupTest(t, fp)
	putFile(t, store, artifact.RootTranscript, "talk.txt", "hello")

	w := doJSON(engine, http.MethodPost, "/api/pdf/stream_latex", gin.H{"transcript_path": "talk.txt"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != `\section{Intro}` {
		t.Errorf("body = %q", got)
	}
}

func TestStreamLatexUpstreamFailure(t *testing.T) {
	var seq iter.Seq2[string, error] = func(yield func(string, error) bool) {
		yield("", fmt.Errorf("dial: %w", llm.ErrProviderUnavailable))
	}
	engine, store := setupTest(t, &fakePipeline{stream: llm.NewStream(seq)})
	putFile(t, store, artifact.RootTranscript, "talk.txt", "hello")

	w := doJSON(engine, http.MethodPost, "/api/pdf/stream_latex", gin.H{"transcript_path": "talk.txt"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestDownload(t *testing.T) {
	engine, store := setupTest(t, &fakePipeline{})
	inside := putFile(t, store, artifact.RootQuiz, "q.json", `{}`)

	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	w := doJSON(engine, http.MethodPost, "/api/download", gin.H{"path": inside})
	if w.Code != http.StatusOK || w.Body.String() != "{}" {
		t.Errorf("inside root: status = %d body = %q", w.Code, w.Body.String())
	}

	w = doJSON(engine, http.MethodPost, "/api/download", gin.H{"path": outside})
	if w.Code != http.StatusNotFound {
		t.Errorf("outside root: status = %d, want 404", w.Code)
	}
}

func TestLineage(t *testing.T) {
	engine, store := setupTest(t, &fakePipeline{})
	if err := store.Record(artifact.Artifact{Key: "/m/a.mp3", Stage: "upload"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(artifact.Artifact{Key: "/t/a.txt", Stage: "transcript", Source: "/m/a.mp3"}); err != nil {
		t.Fatal(err)
	}

	w := doJSON(engine, http.MethodGet, "/api/lineage?path=/t/a.txt", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if chain := decode(t, w)["lineage"].([]any); len(chain) != 2 {
		t.Errorf("lineage = %v", chain)
	}

	w = doJSON(engine, http.MethodGet, "/api/lineage?path=/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown key: status = %d, want 404", w.Code)
	}
}

func TestChatUnconfigured(t *testing.T) {
	engine, _ := setupTest(t, &fakePipeline{})

	w := doJSON(engine, http.MethodPost, "/api/chat", gin.H{"messages": []gin.H{{"role": "user", "content": "hi"}}})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&quiz.SchemaError{Reason: "x"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", llm.ErrProviderUnavailable), http.StatusBadGateway},
		{pipeline.ErrEmptyInput, http.StatusBadRequest},
		{artifact.ErrOutsideRoot, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
