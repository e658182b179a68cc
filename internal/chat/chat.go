package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nguyentantai21042004/study-flow/internal/llm"
)

// Reply runs up to two model turns. Tool calls requested in the first turn
// are executed and their results, including failures, are fed back for the
// second. Only model errors are returned as errors.
func (c *implChat) Reply(ctx context.Context, model string, messages []llm.Message) (*Reply, error) {
	if model == "" {
		model = c.defaultModel
	}
	history := append([]llm.Message(nil), messages...)

	first, err := c.chatter.ChatWithTools(ctx, model, history, c.tools)
	if err != nil {
		return nil, err
	}
	if len(first.ToolCalls) == 0 {
		return &Reply{Message: first.Content, ToolResults: []ToolResult{}}, nil
	}

	history = append(history, *first)
	results := make([]ToolResult, 0, len(first.ToolCalls))
	for _, call := range first.ToolCalls {
		c.logger.Info(ctx, "Executing tool %s", call.Name)

		result := c.call(ctx, call)
		history = append(history, llm.Message{
			Role:       llm.RoleTool,
			Content:    string(result),
			ToolCallID: call.ID,
			Name:       call.Name,
		})
		results = append(results, ToolResult{Tool: call.Name, Result: result})
	}

	final, err := c.chatter.ChatWithTools(ctx, model, history, c.tools)
	if err != nil {
		return nil, err
	}
	return &Reply{Message: final.Content, ToolResults: results}, nil
}

// call executes one tool call and always returns a JSON object.
func (c *implChat) call(ctx context.Context, call llm.ToolCall) json.RawMessage {
	args := strings.TrimSpace(call.Arguments)
	if args == "" {
		args = "{}"
	}
	if !json.Valid([]byte(args)) {
		return errorPayload(fmt.Errorf("malformed arguments for %s: %q", call.Name, call.Arguments))
	}

	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      call.Name,
		Arguments: json.RawMessage(args),
	})
	if err != nil {
		return errorPayload(fmt.Errorf("call %s: %w", call.Name, err))
	}

	text := resultText(res)
	if res.IsError && !isStructured(text) {
		return errorPayload(errors.New(text))
	}
	if !json.Valid([]byte(text)) {
		return errorPayload(fmt.Errorf("%s returned non-JSON output", call.Name))
	}
	return json.RawMessage(text)
}

func resultText(res *mcp.CallToolResult) string {
	var b strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func isStructured(text string) bool {
	var body struct {
		Status string `json:"status"`
	}
	return json.Unmarshal([]byte(text), &body) == nil && body.Status != ""
}
