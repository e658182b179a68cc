package llm

import "errors"

// ErrProviderUnavailable marks network failures and 5xx responses from the engine.
var ErrProviderUnavailable = errors.New("text generation provider unavailable")

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Request is a single prompt. ContextWindow is a size hint forwarded to
// engines that accept one (Ollama num_ctx); zero leaves it out.
type Request struct {
	Model         string
	System        string
	Prompt        string
	ContextWindow int
}

type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	// Name is the tool name on RoleTool messages.
	Name string
}

// ToolCall is a structured invocation emitted by the model. Arguments is the
// raw JSON text exactly as the model produced it and may be malformed.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON schema object.
	Parameters map[string]any
}
