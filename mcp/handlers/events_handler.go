package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unihub/unihub-client/client"
)

// EventsHandler exposes the public events listing as an MCP tool.
type EventsHandler struct {
	client *client.Client
}

func NewEventsHandler(c *client.Client) *EventsHandler {
	return &EventsHandler{client: c}
}

// RegisterTools registers the events tools.
func (eh *EventsHandler) RegisterTools(s *server.MCPServer) error {
	list := mcp.NewTool("list_events",
		mcp.WithDescription("List campus events. Served from the last-known-good cache when the backend is unreachable."),
	)
	s.AddTool(list, eh.handleList)
	return nil
}

func (eh *EventsHandler) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, err := eh.client.Events().List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("events lookup failed: %v", err)), nil
	}
	b, _ := json.MarshalIndent(events, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}
