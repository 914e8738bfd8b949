package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/notification"
)

// MarkNotificationRead returns a handler that marks one notification as read.
func MarkNotificationRead(h *hub.Hub) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := req.GetArguments()["id"].(string)
		if id == "" {
			return mcp.NewToolResultError("id is required"), nil
		}

		n, err := h.MarkRead(id)
		if err != nil {
			if errors.Is(err, notification.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("Notification not found: %s", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to mark notification: %s", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("✅ Notification %s (%q) marked as read", n.ID, n.Title)), nil
	}
}

// ClearNotifications returns a handler that drops every stored notification.
func ClearNotifications(h *hub.Hub) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		confirm, _ := req.GetArguments()["confirm"].(bool)
		if !confirm {
			return mcp.NewToolResultError("confirm must be true to clear all notifications"), nil
		}

		h.Reset()
		return mcp.NewToolResultText("🧹 All notifications cleared"), nil
	}
}
