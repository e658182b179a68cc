package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nguyentantai21042004/study-flow/internal/llm"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

type implChat struct {
	chatter      llm.ToolChatter
	session      *mcp.ClientSession
	tools        []llm.Tool
	defaultModel string
	logger       logger.Logger
}

// New connects an in-process client to srv and loads its tool definitions.
func New(ctx context.Context, chatter llm.ToolChatter, srv *mcp.Server, defaultModel string, log logger.Logger) (Chat, error) {
	serverT, clientT := mcp.NewInMemoryTransports()
	if _, err := srv.Connect(ctx, serverT, nil); err != nil {
		return nil, fmt.Errorf("connect tool server: %w", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: serverName + "-chat", Version: serverVersion}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		return nil, fmt.Errorf("connect tool client: %w", err)
	}

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("list tools: %w", err)
	}

	tools := make([]llm.Tool, 0, len(listed.Tools))
	for _, t := range listed.Tools {
		params, err := schemaMap(t.InputSchema)
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		tools = append(tools, llm.Tool{Name: t.Name, Description: t.Description, Parameters: params})
	}

	return &implChat{
		chatter:      chatter,
		session:      session,
		tools:        tools,
		defaultModel: defaultModel,
		logger:       log,
	}, nil
}

// schemaMap normalizes whatever schema representation the client decoded into a plain map.
func schemaMap(schema any) (map[string]any, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode input schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode input schema: %w", err)
	}
	return m, nil
}

func (c *implChat) Close() error {
	return c.session.Close()
}
