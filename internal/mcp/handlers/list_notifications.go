package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/notification"
)

const (
	defaultListLimit = 20
	longPollMaxWait  = 30
)

// ListNotifications returns a handler that lists stored notifications,
// most recent first. When wait_seconds > 0 it long-polls until a new
// notification arrives or the timeout expires.
func ListNotifications(h *hub.Hub) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		unreadOnly, _ := args["unread_only"].(bool)
		// Clamp as floats: huge values overflow int conversion.
		limit := defaultListLimit
		if l, ok := args["limit"].(float64); ok && l > 0 {
			limit = max(1, int(min(l, float64(h.Stats().Capacity))))
		}

		waitSeconds := 0
		if w, ok := args["wait_seconds"].(float64); ok && w > 0 {
			waitSeconds = int(min(w, longPollMaxWait))
		}

		if waitSeconds > 0 {
			if err := waitForCreated(ctx, h, time.Duration(waitSeconds)*time.Second); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Could not wait for notifications: %s", err)), nil
			}
		}

		list := filter(h.Snapshot(), unreadOnly, limit)
		if len(list) == 0 {
			return mcp.NewToolResultText("No notifications found."), nil
		}

		return mcp.NewToolResultText(formatList(list)), nil
	}
}

// waitForCreated blocks until a created event, the timeout or ctx ends.
// The subscriber's initial snapshot is skipped.
func waitForCreated(ctx context.Context, h *hub.Hub, wait time.Duration) error {
	sub, err := h.Connect()
	if err != nil {
		return err
	}
	defer sub.Close()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok || ev.Kind == hub.KindCreated {
				return nil
			}
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func filter(list []notification.Notification, unreadOnly bool, limit int) []notification.Notification {
	if limit <= 0 {
		return []notification.Notification{}
	}
	out := make([]notification.Notification, 0, min(len(list), limit))
	for _, n := range list {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out
}

func formatList(list []notification.Notification) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔔 Notifications (%d)\n\n", len(list))

	for _, n := range list {
		state := "unread"
		if n.Read {
			state = "read"
		}
		fmt.Fprintf(&sb, "%s **%s** · %s [%s]\n", typeIcon(string(n.Type)), n.Title, n.ID, state)
		fmt.Fprintf(&sb, "  %s\n", n.Message)
		fmt.Fprintf(&sb, "  From: %s | %s\n\n", n.Sender, n.Timestamp.Format(time.RFC3339))
	}

	return sb.String()
}

func typeIcon(t string) string {
	switch notification.Type(t) {
	case notification.TypeInfo:
		return "ℹ️"
	case notification.TypeSuccess:
		return "✅"
	case notification.TypeWarning:
		return "⚠️"
	case notification.TypeError:
		return "❌"
	default:
		return "🔔"
	}
}
