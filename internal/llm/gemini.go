package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

// contentStream opens one streamed generation.
type contentStream func(ctx context.Context, client *genai.Client, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

type implGemini struct {
	mu          sync.Mutex
	apiKeys     []string
	currentKey  int
	temperature float64
	// baseURL overrides the API endpoint when set.
	baseURL    string
	openStream contentStream
	logger     logger.Logger
}

// NewGemini creates a Provider that rotates through the supplied Gemini API
// keys whenever one is rate limited.
func NewGemini(apiKeys []string, temperature float64, log logger.Logger) (Provider, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("gemini: at least one API key is required")
	}
	return newGemini(apiKeys, temperature, "", log), nil
}

func newGemini(apiKeys []string, temperature float64, baseURL string, log logger.Logger) *implGemini {
	return &implGemini{
		apiKeys:     apiKeys,
		temperature: temperature,
		baseURL:     baseURL,
		openStream:  generateContentStream,
		logger:      log,
	}
}

func generateContentStream(ctx context.Context, client *genai.Client, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return client.Models.GenerateContentStream(ctx, model, contents, cfg)
}

func (g *implGemini) Generate(ctx context.Context, req Request) (string, error) {
	var text string
	err := g.withClient(ctx, func(client *genai.Client) error {
		result, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), g.config(req.System))
		if err != nil {
			return err
		}
		text = responseText(result)
		if text == "" {
			return errors.New("empty response from Gemini")
		}
		return nil
	})
	return text, err
}

// Stream rotates keys only while nothing has been yielded yet; a failure in
// the middle of a response is reported as is.
func (g *implGemini) Stream(ctx context.Context, req Request) (*Stream, error) {
	return NewStream(func(yield func(string, error) bool) {
		attempts := len(g.apiKeys)
		var lastErr error

		for range attempts {
			client, key, err := g.client(ctx)
			if err != nil {
				lastErr = err
				g.rotateKey()
				continue
			}

			yielded := false
			retry := false
			for resp, err := range g.openStream(ctx, client, req.Model, genai.Text(req.Prompt), g.config(req.System)) {
				if err != nil {
					if !yielded && isRateLimited(err) {
						g.logger.Warn(ctx, "Key %d rate limited, rotating...", key+1)
						g.rotateKey()
						lastErr = err
						retry = true
						break
					}
					yield("", classify(err))
					return
				}
				if text := responseText(resp); text != "" {
					yielded = true
					if !yield(text, nil) {
						return
					}
				}
			}
			if !retry {
				return
			}
		}
		yield("", fmt.Errorf("all API keys exhausted: %w", lastErr))
	}), nil
}

func (g *implGemini) Describe(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	var text string
	err := g.withClient(ctx, func(client *genai.Client) error {
		result, err := client.Models.GenerateContent(ctx, model, contents, g.config(""))
		if err != nil {
			return err
		}
		text = responseText(result)
		return nil
	})
	return text, err
}

func (g *implGemini) ChatWithTools(ctx context.Context, model string, messages []Message, tools []Tool) (*Message, error) {
	var system string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = m.Content
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args, err := toolArgs(tc.Arguments)
				if err != nil {
					g.logger.Warn(ctx, "Tool call %s has malformed arguments, replaying them raw: %v", tc.Name, err)
				}
				parts = append(parts, genai.NewPartFromFunctionCall(tc.Name, args))
			}
			if len(parts) > 0 {
				contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
			}
		case RoleTool:
			var result any
			if err := json.Unmarshal([]byte(m.Content), &result); err != nil {
				result = m.Content
			}
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromFunctionResponse(m.Name, map[string]any{"output": result}),
			}, genai.RoleUser))
		}
	}

	cfg := g.config(system)
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: t.Parameters,
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	var reply *Message
	err := g.withClient(ctx, func(client *genai.Client) error {
		result, err := client.Models.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			return err
		}
		reply = &Message{Role: RoleAssistant, Content: strings.TrimSpace(responseText(result))}
		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return nil
		}
		for _, part := range result.Candidates[0].Content.Parts {
			if part.FunctionCall == nil {
				continue
			}
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return fmt.Errorf("encode function call args: %w", err)
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = uuid.NewString()
			}
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		}
		return nil
	})
	return reply, err
}

func (g *implGemini) config(system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if g.temperature != 0 {
		cfg.Temperature = genai.Ptr(float32(g.temperature))
	}
	return cfg
}

// withClient runs fn with a client for the current key.
// Rotates API keys on 429 / quota errors.
func (g *implGemini) withClient(ctx context.Context, fn func(*genai.Client) error) error {
	attempts := len(g.apiKeys)
	var lastErr error

	for range attempts {
		client, key, err := g.client(ctx)
		if err != nil {
			lastErr = err
			g.rotateKey()
			continue
		}

		if err := fn(client); err != nil {
			if isRateLimited(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", key+1)
				g.rotateKey()
				lastErr = err
				continue
			}
			return classify(err)
		}
		return nil
	}

	return fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *implGemini) client(ctx context.Context) (*genai.Client, int, error) {
	g.mu.Lock()
	idx := g.currentKey
	key := g.apiKeys[idx]
	g.mu.Unlock()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return nil, idx, fmt.Errorf("create client: %w", err)
	}
	return client, idx, nil
}

func (g *implGemini) rotateKey() {
	g.mu.Lock()
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	g.mu.Unlock()
}

// toolArgs decodes a replayed tool call. Malformed JSON is kept under "raw"
// so the model still sees what it sent.
func toolArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{"raw": raw}, err
	}
	return args, nil
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			text += part.Text
		}
	}
	return text
}

func isRateLimited(err error) bool {
	errMsg := err.Error()
	return strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED")
}

// classify maps server-side and transport failures onto ErrProviderUnavailable.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	errMsg := err.Error()
	for _, marker := range []string{"500", "502", "503", "504", "UNAVAILABLE", "INTERNAL", "connection refused", "no such host"} {
		if strings.Contains(errMsg, marker) {
			return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
	}
	return fmt.Errorf("generate content: %w", err)
}
