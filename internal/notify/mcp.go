package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/notification"
)

// MCPSender abstracts the mcp-go server notification methods.
type MCPSender interface {
	SendNotificationToAllClients(method string, params map[string]any)
}

// MCPNotifier pushes hub events to MCP clients as notifications/message.
type MCPNotifier struct {
	sender   MCPSender
	debounce time.Duration
	now      func() time.Time

	mu           sync.Mutex
	lastSnapshot time.Time
	primed       bool
}

// NewMCPNotifier creates an MCPNotifier. Full snapshots (resets and
// resyncs) are debounced by the given interval; created and updated events
// are always sent. A snapshot arriving as the very first event is the attach
// snapshot and is not forwarded; if that one was dropped, later snapshots are.
func NewMCPNotifier(sender MCPSender, debounce time.Duration) *MCPNotifier {
	if debounce <= 0 {
		debounce = 3 * time.Second
	}
	return &MCPNotifier{
		sender:   sender,
		debounce: debounce,
		now:      time.Now,
	}
}

// Notify sends an MCP notification for the given event.
func (n *MCPNotifier) Notify(event hub.Event) {
	n.mu.Lock()
	attach := !n.primed && event.Kind == hub.KindFullSnapshot
	n.primed = true
	n.mu.Unlock()
	if attach {
		return
	}

	switch event.Kind {
	case hub.KindCreated:
		n.sendMessage(levelFor(event.Notification.Type), event)
	case hub.KindUpdated:
		n.sendMessage("debug", event)
	case hub.KindFullSnapshot:
		n.sendSnapshot(event)
	default:
		slog.Debug("mcp notifier: unknown event kind", "kind", event.Type())
	}
}

func (n *MCPNotifier) sendSnapshot(event hub.Event) {
	n.mu.Lock()
	now := n.now()
	if !n.lastSnapshot.IsZero() && now.Sub(n.lastSnapshot) < n.debounce {
		n.mu.Unlock()
		return
	}
	n.lastSnapshot = now
	n.mu.Unlock()

	params := map[string]any{
		"level":  "notice",
		"logger": "beacon",
		"data": map[string]any{
			"type":  event.Type(),
			"count": len(event.Notifications),
		},
	}
	n.sender.SendNotificationToAllClients("notifications/message", params)
}

func (n *MCPNotifier) sendMessage(level string, event hub.Event) {
	nt := event.Notification
	params := map[string]any{
		"level":  level,
		"logger": "beacon",
		"data": map[string]any{
			"type":            event.Type(),
			"notification_id": nt.ID,
			"title":           nt.Title,
			"message":         nt.Message,
			"kind":            string(nt.Type),
			"sender":          nt.Sender,
			"read":            nt.Read,
		},
	}
	n.sender.SendNotificationToAllClients("notifications/message", params)
}

// levelFor maps a notification type onto an MCP logging level.
func levelFor(t notification.Type) string {
	switch t {
	case notification.TypeSuccess:
		return "notice"
	case notification.TypeWarning:
		return "warning"
	case notification.TypeError:
		return "error"
	default:
		return "info"
	}
}
