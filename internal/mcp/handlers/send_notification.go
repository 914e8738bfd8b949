package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/beacon/internal/hub"
)

// SendNotification returns a handler that ingests a notification, exactly
// as the webhook does.
func SendNotification(h *hub.Hub) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		sub := hub.Submission{}
		sub.Title, _ = args["title"].(string)
		sub.Message, _ = args["message"].(string)
		sub.Type, _ = args["type"].(string)
		sub.Sender, _ = args["sender"].(string)
		sub.Timestamp, _ = args["timestamp"].(string)

		n, err := h.Submit(sub)
		if err != nil {
			var ve *hub.ValidationError
			if errors.As(err, &ve) {
				return mcp.NewToolResultError("title and message are required"), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to send notification: %s", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("%s Notification %s sent (%s, from %s)",
			typeIcon(string(n.Type)), n.ID, n.Type, n.Sender)), nil
	}
}
