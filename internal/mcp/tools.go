package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/beacon/internal/mcp/handlers"
)

func registerTools(s *server.MCPServer, deps *Deps) {
	// send_notification: same path as the webhook
	s.AddTool(
		mcp.NewTool("send_notification",
			mcp.WithDescription("Send a notification to every connected Beacon client."),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Short notification title"),
			),
			mcp.WithString("message",
				mcp.Required(),
				mcp.Description("Notification body"),
			),
			mcp.WithString("type",
				mcp.Description("Notification type (default: info). Custom labels are accepted."),
			),
			mcp.WithString("sender",
				mcp.Description("Origin label (default: system)"),
			),
			mcp.WithString("timestamp",
				mcp.Description("RFC 3339 creation time. Defaults to receipt time."),
			),
		),
		handlers.SendNotification(deps.Hub),
	)

	// list_notifications: pull the current snapshot
	s.AddTool(
		mcp.NewTool("list_notifications",
			mcp.WithDescription("List stored notifications, most recent first. Supports long-polling with wait_seconds."),
			mcp.WithBoolean("unread_only",
				mcp.Description("Only include notifications not yet marked as read"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of notifications to return (default: 20)"),
			),
			mcp.WithNumber("wait_seconds",
				mcp.Description("Wait up to N seconds for a new notification before responding (max 30)."),
			),
		),
		handlers.ListNotifications(deps.Hub),
	)

	// mark_notification_read
	s.AddTool(
		mcp.NewTool("mark_notification_read",
			mcp.WithDescription("Mark a notification as read. Every connected client receives the update."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Notification ID"),
			),
		),
		handlers.MarkNotificationRead(deps.Hub),
	)

	// clear_notifications
	s.AddTool(
		mcp.NewTool("clear_notifications",
			mcp.WithDescription("Remove every stored notification and reset connected clients."),
			mcp.WithBoolean("confirm",
				mcp.Required(),
				mcp.Description("Must be true"),
			),
		),
		handlers.ClearNotifications(deps.Hub),
	)

	s.AddTool(
		mcp.NewTool("hub_stats",
			mcp.WithDescription("Show stored notification count, live subscribers and dropped events."),
		),
		handlers.HubStats(deps.Hub),
	)
}
