package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAI(Options{
		BaseURL:    srv.URL + "/v1",
		APIKey:     "sk-test",
		Headers:    map[string]string{"X-Title": "Unified Media Parser"},
		HTTPClient: srv.Client(),
	}, logger.Nop())
}

func TestGenerate(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "Unified Media Parser" {
			t.Errorf("X-Title = %q", got)
		}

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		opts, _ := body["options"].(map[string]any)
		if opts["num_ctx"] != float64(32768) {
			t.Errorf("options = %v, want num_ctx hint", body["options"])
		}
		msgs := body["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("messages = %v, want system + user", msgs)
		}

		fmt.Fprint(w, `{"choices":[{"message":{"content":"  hello  "}}]}`)
	})

	got, err := p.Generate(context.Background(), Request{Model: "m", System: "sys", Prompt: "hi", ContextWindow: 32768})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("Generate() = %q", got)
	}
}

func TestStreamSSE(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frag := range []string{"Hel", "", "lo"} {
			chunk, _ := json.Marshal(map[string]any{
				"choices": []any{map[string]any{"delta": map[string]any{"content": frag}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, ": keep-alive\n\ndata: [DONE]\n\n")
	})

	s, err := p.Stream(context.Background(), Request{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var frags []string
	for frag, err := range s.All() {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		frags = append(frags, frag)
	}
	if strings.Join(frags, "|") != "Hel|lo" {
		t.Errorf("fragments = %v", frags)
	}
	if full, _ := s.Collect(); full != "Hello" {
		t.Errorf("Collect() = %q", full)
	}
}

func TestProviderUnavailable(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":{"message":"upstream down"}}`)
	})

	_, err := p.Generate(context.Background(), Request{Model: "m", Prompt: "p"})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("Generate() error = %v, want ErrProviderUnavailable", err)
	}

	s, _ := p.Stream(context.Background(), Request{Model: "m", Prompt: "p"})
	if _, err := s.Collect(); !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("Stream Collect() error = %v, want ErrProviderUnavailable", err)
	}
}

func TestClientError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"model not found","type":"invalid_request_error"}}`)
	})

	_, err := p.Generate(context.Background(), Request{Model: "missing", Prompt: "p"})
	if err == nil || errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("Generate() error = %v, want plain api error", err)
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error = %v", err)
	}
}

func TestDescribe(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					ImageURL struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		parts := body.Messages[0].Content
		if len(parts) != 2 || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("content parts = %+v", parts)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"a diagram"}}]}`)
	})

	got, err := p.Describe(context.Background(), "vision", "describe", []byte{0x89, 'P', 'N', 'G'}, "image/png")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if got != "a diagram" {
		t.Errorf("Describe() = %q", got)
	}
}

func TestChatWithTools(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Tools) != 1 || body.Tools[0].Function.Name != "list_files" {
			t.Errorf("tools = %+v", body.Tools)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":null,"tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"list_files","arguments":"{\"folder_type\":\"quiz\"}"}}
		]}}]}`)
	})

	msg, err := p.ChatWithTools(context.Background(), "m",
		[]Message{{Role: RoleUser, Content: "what quizzes do I have?"}},
		[]Tool{{Name: "list_files", Parameters: map[string]any{"type": "object"}}},
	)
	if err != nil {
		t.Fatalf("ChatWithTools() error = %v", err)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("ToolCalls = %+v", msg.ToolCalls)
	}
	if tc := msg.ToolCalls[0]; tc.ID != "call_1" || tc.Arguments != `{"folder_type":"quiz"}` {
		t.Errorf("ToolCall = %+v", tc)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
	}{
		{name: "openai", cfg: config.LLMConfig{Provider: "openai", BaseURL: "http://localhost:11434/v1"}},
		{name: "gemini", cfg: config.LLMConfig{Provider: "gemini", GeminiKeys: []string{"k"}}},
		{name: "gemini without keys", cfg: config.LLMConfig{Provider: "gemini"}, wantErr: true},
		{name: "unknown", cfg: config.LLMConfig{Provider: "bedrock"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, logger.Nop())
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
