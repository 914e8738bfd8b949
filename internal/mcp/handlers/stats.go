package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/beacon/internal/hub"
)

// HubStats returns a handler that reports store and subscriber counters.
func HubStats(h *hub.Hub) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st := h.Stats()

		var sb strings.Builder
		sb.WriteString("📊 Beacon stats\n\n")
		fmt.Fprintf(&sb, "Stored: %d / %d\n", st.Stored, st.Capacity)
		fmt.Fprintf(&sb, "Live subscribers: %d\n", st.Subscribers)
		fmt.Fprintf(&sb, "Events published: %d\n", st.Published)
		fmt.Fprintf(&sb, "Events dropped: %d\n", st.Dropped)

		return mcp.NewToolResultText(sb.String()), nil
	}
}
