package chat

import (
	"context"
	"encoding/json"

	"github.com/nguyentantai21042004/study-flow/internal/llm"
)

// Chat answers one conversation turn, letting the model call pipeline tools.
type Chat interface {
	Reply(ctx context.Context, model string, messages []llm.Message) (*Reply, error)
	Close() error
}

type Reply struct {
	Message     string       `json:"message"`
	ToolResults []ToolResult `json:"tool_results"`
}

// ToolResult is the JSON object a tool call produced. Failed calls carry
// {"status":"error","error":...} rather than a Go error.
type ToolResult struct {
	Tool   string          `json:"tool"`
	Result json.RawMessage `json:"result"`
}
