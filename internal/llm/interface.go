package llm

import "context"

// Generator produces text from a prompt, either all at once or as a stream.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request) (*Stream, error)
}

// Vision describes an image.
type Vision interface {
	Describe(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error)
}

// ToolChatter runs one chat turn where the model may request tool calls.
type ToolChatter interface {
	ChatWithTools(ctx context.Context, model string, messages []Message, tools []Tool) (*Message, error)
}

type Provider interface {
	Generator
	Vision
	ToolChatter
}
