// Package bus is an in-process publish/subscribe fabric with bounded
// per-subscriber buffers. A full buffer drops its oldest queued event so a
// stalled subscriber never applies backpressure to publishers.
package bus

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const defaultBufferSize = 64

var (
	// ErrTooManySubscribers is returned by Subscribe when MaxSubscribers is reached.
	ErrTooManySubscribers = errors.New("bus: subscriber limit reached")
	// ErrClosed is returned by Subscribe after Close.
	ErrClosed = errors.New("bus: closed")
)

// Options configures a Bus.
type Options struct {
	Name           string
	BufferSize     int
	MaxSubscribers int // 0 means unlimited
}

// Stats is a point-in-time view of bus counters.
type Stats struct {
	Subscribers int   `json:"subscribers"`
	Published   int64 `json:"published"`
	Dropped     int64 `json:"dropped"`
}

// Bus fans events of type T out to every registered subscription.
// Registration, removal and delivery share one mutex, which keeps each
// subscriber's stream in publish order.
type Bus[T any] struct {
	mu          sync.Mutex
	subscribers map[string]*Subscription[T]
	closed      bool
	options     Options

	published atomic.Int64
	dropped   atomic.Int64
}

// New creates a Bus.
func New[T any](opts Options) *Bus[T] {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.Name == "" {
		opts.Name = "bus"
	}
	return &Bus[T]{
		subscribers: make(map[string]*Subscription[T]),
		options:     opts,
	}
}

// Subscription is a registered delivery channel.
type Subscription[T any] struct {
	id      string
	ch      chan T
	bus     *Bus[T]
	dropped atomic.Int64
}

// ID returns the subscription's unique identifier.
func (s *Subscription[T]) ID() string { return s.id }

// C returns the receive side of the subscription buffer. It is closed on
// unsubscribe or when the bus closes.
func (s *Subscription[T]) C() <-chan T { return s.ch }

// Dropped returns how many events were discarded for this subscriber.
func (s *Subscription[T]) Dropped() int64 { return s.dropped.Load() }

// Close unsubscribes. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.bus.Unsubscribe(s.id)
}

// Subscribe registers a new subscription. The initial events are queued
// before the subscription becomes visible to publishers, so they always
// precede any published event. Subscribe never blocks.
func (b *Bus[T]) Subscribe(initial ...T) (*Subscription[T], error) {
	sub := &Subscription[T]{
		id:  uuid.NewString(),
		ch:  make(chan T, b.options.BufferSize),
		bus: b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.options.MaxSubscribers > 0 && len(b.subscribers) >= b.options.MaxSubscribers {
		return nil, ErrTooManySubscribers
	}
	for _, event := range initial {
		b.deliverLocked(sub, event)
	}
	b.subscribers[sub.id] = sub

	slog.Debug("subscriber registered",
		"bus", b.options.Name,
		"subscriber_id", sub.id,
		"subscribers", len(b.subscribers))

	return sub, nil
}

// Unsubscribe removes the subscription and closes its channel.
// Unknown or already removed ids are ignored.
func (b *Bus[T]) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(sub.ch)

	slog.Debug("subscriber removed",
		"bus", b.options.Name,
		"subscriber_id", id,
		"dropped", sub.dropped.Load())
}

// Publish delivers event to every registered subscription and returns the
// number of subscribers it was queued for.
func (b *Bus[T]) Publish(event T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0
	}
	b.published.Add(1)
	for _, sub := range b.subscribers {
		b.deliverLocked(sub, event)
	}
	return len(b.subscribers)
}

// SendTo delivers event to a single subscription. It reports false when the
// subscription is no longer registered.
func (b *Bus[T]) SendTo(id string, event T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[id]
	if !ok || b.closed {
		return false
	}
	b.deliverLocked(sub, event)
	return true
}

// deliverLocked queues event without blocking. When the buffer is full the
// oldest queued event is discarded until the new one fits.
func (b *Bus[T]) deliverLocked(sub *Subscription[T], event T) {
	for {
		select {
		case sub.ch <- event:
			return
		default:
		}

		select {
		case <-sub.ch:
			sub.dropped.Add(1)
			b.dropped.Add(1)
			slog.Debug("subscriber buffer full, dropped oldest event",
				"bus", b.options.Name,
				"subscriber_id", sub.id)
		default:
		}
	}
}

// SubscriberCount returns the number of registered subscriptions.
func (b *Bus[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Stats returns the current counters.
func (b *Bus[T]) Stats() Stats {
	return Stats{
		Subscribers: b.SubscriberCount(),
		Published:   b.published.Load(),
		Dropped:     b.dropped.Load(),
	}
}

// Close removes every subscription and closes their channels. Later
// publishes are ignored.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		delete(b.subscribers, id)
		close(sub.ch)
	}
}
