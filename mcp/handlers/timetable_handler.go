package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unihub/unihub-client/client"
)

// TimetableHandler exposes schedule lookups as MCP tools.
type TimetableHandler struct {
	client *client.Client
}

func NewTimetableHandler(c *client.Client) *TimetableHandler {
	return &TimetableHandler{client: c}
}

// RegisterTools registers the timetable tools.
func (th *TimetableHandler) RegisterTools(s *server.MCPServer) error {
	schedule := mcp.NewTool("get_schedule",
		mcp.WithDescription("Get the logged-in user's normalized schedule. Optionally restrict to one weekday (0-6) and week parity (odd/even). Served from the last-known-good cache when the backend is unreachable."),
		mcp.WithNumber("weekday", mcp.Description("Weekday 0-6; omit for the full week")),
		mcp.WithString("week", mcp.Description("Week parity filter: odd or even")),
	)
	s.AddTool(schedule, th.handleSchedule)

	search := mcp.NewTool("search_groups",
		mcp.WithDescription("Search study groups by number or name."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Group number or name fragment")),
	)
	s.AddTool(search, th.handleSearchGroups)
	return nil
}

func (th *TimetableHandler) handleSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t := th.client.Timetable()

	var lessons []client.Lesson
	var err error
	if v, ok := req.GetArguments()["weekday"].(float64); ok {
		week := client.WeekAny
		if w, ok := req.GetArguments()["week"].(string); ok {
			week = client.WeekType(w)
		}
		lessons, err = t.UserScheduleByDay(ctx, int(v), week)
	} else {
		lessons, err = t.UserSchedule(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schedule lookup failed: %v", err)), nil
	}
	b, _ := json.MarshalIndent(lessons, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (th *TimetableHandler) handleSearchGroups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, _ := req.RequireString("query")
	groups, err := th.client.Timetable().SearchGroups(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("group search failed: %v", err)), nil
	}
	b, _ := json.MarshalIndent(groups, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}
