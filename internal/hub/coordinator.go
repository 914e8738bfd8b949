package hub

import (
	"log/slog"

	"github.com/btouchard/beacon/internal/notification"
)

// MarkRead flags a notification as read and publishes an updated event.
// Unknown ids return an error wrapping notification.ErrNotFound and publish
// nothing. Marking an already-read notification succeeds and republishes
// the record so lagging subscribers converge.
func (h *Hub) MarkRead(id string) (notification.Notification, error) {
	h.commit.Lock()
	n, err := h.store.MarkRead(id)
	if err != nil {
		h.commit.Unlock()
		return notification.Notification{}, err
	}
	delivered := h.bus.Publish(Updated(n))
	h.commit.Unlock()

	slog.Info("notification marked as read",
		"notification_id", n.ID,
		"subscribers", delivered)

	return n, nil
}
