package hub

import (
	"log/slog"
	"strings"
	"time"

	"github.com/btouchard/beacon/internal/notification"
)

// Submission is a raw inbound notification from an external sender.
// Only Title and Message are required.
type Submission struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Sender    string `json:"sender,omitempty"`
}

// Submit validates and stores a submission, then publishes a created event.
// It returns once the notification is committed; fan-out is asynchronous
// for subscribers.
func (h *Hub) Submit(s Submission) (notification.Notification, error) {
	fields, err := h.normalize(s)
	if err != nil {
		return notification.Notification{}, err
	}

	h.commit.Lock()
	n := h.store.Append(fields)
	delivered := h.bus.Publish(Created(n))
	h.commit.Unlock()

	slog.Info("notification received",
		"notification_id", n.ID,
		"type", string(n.Type),
		"sender", n.Sender,
		"subscribers", delivered)

	return n, nil
}

func (h *Hub) normalize(s Submission) (notification.Fields, error) {
	var missing []string
	if strings.TrimSpace(s.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(s.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return notification.Fields{}, &ValidationError{Missing: missing}
	}

	f := notification.Fields{
		Title:   s.Title,
		Message: s.Message,
		Type:    notification.Type(strings.TrimSpace(s.Type)),
		Sender:  strings.TrimSpace(s.Sender),
	}
	if ts, ok := parseTimestamp(s.Timestamp); ok {
		f.Timestamp = ts
	} else if s.Timestamp != "" {
		slog.Debug("unparseable timestamp, using receipt time", "timestamp", s.Timestamp)
	}
	return f, nil
}

// parseTimestamp accepts RFC 3339 timestamps with optional fractional seconds.
func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
