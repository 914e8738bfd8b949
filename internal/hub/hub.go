// Package hub coordinates the notification store and the event bus:
// ingestion, read-state changes, resets and live subscriptions.
//
// Every state change and its event are committed under one lock, as is
// every subscription together with its initial snapshot. Each subscriber
// therefore sees a snapshot followed by exactly the events committed after
// it, in commit order. Lock order is always commit, then store or bus; the
// store and the bus never call into each other.
package hub

import (
	"log/slog"
	"sync"

	"github.com/btouchard/beacon/internal/bus"
	"github.com/btouchard/beacon/internal/notification"
)

// Options configures a Hub.
type Options struct {
	Capacity       int
	BufferSize     int
	MaxSubscribers int
}

// Stats summarizes the hub state.
type Stats struct {
	Stored      int   `json:"stored"`
	Capacity    int   `json:"capacity"`
	Subscribers int   `json:"subscribers"`
	Published   int64 `json:"published"`
	Dropped     int64 `json:"dropped"`
}

// Hub is the in-process notification hub.
type Hub struct {
	commit sync.Mutex
	store  *notification.Store
	bus    *bus.Bus[Event]
}

// New creates a Hub with an empty store.
func New(opts Options) *Hub {
	return &Hub{
		store: notification.NewStore(opts.Capacity),
		bus: bus.New[Event](bus.Options{
			Name:           "notifications",
			BufferSize:     opts.BufferSize,
			MaxSubscribers: opts.MaxSubscribers,
		}),
	}
}

// Snapshot returns the current collection, most recent first.
func (h *Hub) Snapshot() []notification.Notification {
	return h.store.Snapshot()
}

// Get returns a single notification. Unknown ids return an error wrapping
// notification.ErrNotFound.
func (h *Hub) Get(id string) (notification.Notification, error) {
	return h.store.Get(id)
}

// Reset clears every notification and sends an empty full snapshot to all
// live subscribers.
func (h *Hub) Reset() {
	h.commit.Lock()
	defer h.commit.Unlock()

	h.store.Clear()
	delivered := h.bus.Publish(FullSnapshot(nil))

	slog.Info("notifications cleared", "subscribers", delivered)
}

// Stats returns store and bus counters.
func (h *Hub) Stats() Stats {
	bs := h.bus.Stats()
	return Stats{
		Stored:      h.store.Len(),
		Capacity:    h.store.Capacity(),
		Subscribers: bs.Subscribers,
		Published:   bs.Published,
		Dropped:     bs.Dropped,
	}
}

// Close disconnects every subscriber. The store stays readable.
func (h *Hub) Close() {
	h.commit.Lock()
	defer h.commit.Unlock()
	h.bus.Close()
}
