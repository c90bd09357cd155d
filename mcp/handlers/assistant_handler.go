// Package handlers exposes the UniHub SDK surfaces as MCP tools.
package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/unihub/unihub-client/client"
)

// AssistantHandler exposes the campus AI assistant as MCP tools.
type AssistantHandler struct {
	client *client.Client
}

func NewAssistantHandler(c *client.Client) *AssistantHandler {
	return &AssistantHandler{client: c}
}

// RegisterTools registers the assistant tools.
func (ah *AssistantHandler) RegisterTools(s *server.MCPServer) error {
	ask := mcp.NewTool("ask_assistant",
		mcp.WithDescription("Send a prompt to the campus AI assistant. Requires a logged-in UniHub session (run `unihub login` first). The local conversation log is updated optimistically."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The question to ask")),
		mcp.WithString("context", mcp.Description("Optional UI context to ground the answer")),
	)
	s.AddTool(ask, ah.handleAsk)

	clear := mcp.NewTool("clear_assistant_history",
		mcp.WithDescription("Delete the assistant conversation history on the backend and reset the local log."),
	)
	s.AddTool(clear, ah.handleClear)
	return nil
}

func (ah *AssistantHandler) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, _ := req.RequireString("prompt")
	if v, ok := req.GetArguments()["context"].(string); ok {
		ah.client.Assistant().SetContext(v)
	}

	log.Debug().Str("prompt", prompt).Msg("handling ask_assistant request")
	answer, err := ah.client.Assistant().Send(ctx, prompt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assistant failed: %v", err)), nil
	}
	return mcp.NewToolResultText(answer), nil
}

func (ah *AssistantHandler) handleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := ah.client.Assistant().ClearHistory(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clear failed: %v", err)), nil
	}
	return mcp.NewToolResultText("history cleared"), nil
}
