package hub

import (
	"fmt"
	"log/slog"

	"github.com/btouchard/beacon/internal/bus"
)

// Subscriber is a live connection to the hub's event stream.
type Subscriber struct {
	sub *bus.Subscription[Event]
}

// ID returns the subscriber identifier.
func (s *Subscriber) ID() string { return s.sub.ID() }

// Events returns the event stream. The first event is always a full
// snapshot. The channel is closed after Close or when the hub closes.
func (s *Subscriber) Events() <-chan Event { return s.sub.C() }

// Dropped returns how many events were discarded because the subscriber
// fell behind. A subscriber that drops events should ask for a Resync.
func (s *Subscriber) Dropped() int64 { return s.sub.Dropped() }

// Close disconnects the subscriber. It has no effect on notification state
// and is safe to call more than once.
func (s *Subscriber) Close() {
	s.sub.Close()
	slog.Info("subscriber disconnected", "subscriber_id", s.sub.ID())
}

// Connect registers a new live subscriber and queues a full snapshot as its
// first event.
func (h *Hub) Connect() (*Subscriber, error) {
	h.commit.Lock()
	defer h.commit.Unlock()

	sub, err := h.bus.Subscribe(FullSnapshot(h.store.Snapshot()))
	if err != nil {
		return nil, fmt.Errorf("connecting subscriber: %w", err)
	}

	slog.Info("subscriber connected", "subscriber_id", sub.ID())

	return &Subscriber{sub: sub}, nil
}

// Resync queues a fresh full snapshot for one subscriber. It reports false
// if the subscriber is already disconnected.
func (h *Hub) Resync(s *Subscriber) bool {
	h.commit.Lock()
	defer h.commit.Unlock()

	return h.bus.SendTo(s.ID(), FullSnapshot(h.store.Snapshot()))
}
