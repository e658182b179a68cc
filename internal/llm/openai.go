package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type chatRequest struct {
	Model       string         `json:"model"`
	Messages    []chatMessage  `json:"messages"`
	Stream      bool           `json:"stream,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	Tools       []chatTool     `json:"tools,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    any            `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type chatTool struct {
	Type     string           `json:"type"`
	Function chatToolFunction `json:"function"`
}

type chatToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []chatToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (o *implOpenAI) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := o.post(ctx, o.newChatRequest(req, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	msg, err := decodeChatResponse(resp.Body)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// Stream issues the request lazily on the first fragment read and yields
// delta contents from the server-sent event stream.
func (o *implOpenAI) Stream(ctx context.Context, req Request) (*Stream, error) {
	body := o.newChatRequest(req, true)

	return NewStream(func(yield func(string, error) bool) {
		resp, err := o.post(ctx, body)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			data, ok := strings.CutPrefix(line, "data:")
			if !ok {
				continue
			}
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				return
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				yield("", fmt.Errorf("decode stream chunk: %w", err))
				return
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(chunk.Choices[0].Delta.Content, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}
			yield("", fmt.Errorf("%w: read stream: %v", ErrProviderUnavailable, err))
		}
	}), nil
}

func (o *implOpenAI) Describe(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	body := chatRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: RoleUser,
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
		Temperature: o.temperaturePtr(),
	}

	resp, err := o.post(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	msg, err := decodeChatResponse(resp.Body)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func (o *implOpenAI) ChatWithTools(ctx context.Context, model string, messages []Message, tools []Tool) (*Message, error) {
	body := chatRequest{
		Model:       model,
		Temperature: o.temperaturePtr(),
	}
	for _, m := range messages {
		cm := chatMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if m.Role == RoleTool {
			cm.Name = m.Name
		}
		for _, tc := range m.ToolCalls {
			var call chatToolCall
			call.ID = tc.ID
			call.Type = "function"
			call.Function.Name = tc.Name
			call.Function.Arguments = tc.Arguments
			cm.ToolCalls = append(cm.ToolCalls, call)
		}
		body.Messages = append(body.Messages, cm)
	}
	for _, t := range tools {
		body.Tools = append(body.Tools, chatTool{
			Type: "function",
			Function: chatToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	resp, err := o.post(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeChatResponse(resp.Body)
}

func (o *implOpenAI) newChatRequest(req Request, stream bool) chatRequest {
	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: RoleSystem, Content: req.System})
	}
	messages = append(messages, chatMessage{Role: RoleUser, Content: req.Prompt})

	body := chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Stream:      stream,
		Temperature: o.temperaturePtr(),
	}
	if req.ContextWindow > 0 {
		body.Options = map[string]any{"num_ctx": req.ContextWindow}
	}
	return body
}

func (o *implOpenAI) temperaturePtr() *float64 {
	if o.temperature == 0 {
		return nil
	}
	t := o.temperature
	return &t
}

func (o *implOpenAI) post(ctx context.Context, payload chatRequest) (*http.Response, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", buf)
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	o.logger.Debug(ctx, "POST %s model=%s stream=%t", req.URL, payload.Model, payload.Stream)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func decodeChatResponse(r io.Reader) (*Message, error) {
	var response chatResponse
	if err := json.NewDecoder(r).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("no choices returned")
	}

	choice := response.Choices[0].Message
	msg := &Message{
		Role:    RoleAssistant,
		Content: strings.TrimSpace(choice.Content),
	}
	for _, tc := range choice.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return msg, nil
}

func decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, msg)
	}
	return fmt.Errorf("llm api error: status %d: %s", resp.StatusCode, msg)
}
