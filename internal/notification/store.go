package notification

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Store is the bounded, most-recent-first notification collection.
// All operations are serialized by a single RWMutex; readers only ever
// receive copies.
type Store struct {
	mu       sync.RWMutex
	items    []Notification
	capacity int
	lastID   int64

	now func() time.Time
}

// NewStore creates a Store retaining at most capacity notifications.
// A capacity below 1 falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Store{
		items:    make([]Notification, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Capacity returns the retention bound.
func (s *Store) Capacity() int {
	return s.capacity
}

// Len returns the number of stored notifications.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Append stores a new notification at the front of the collection and
// evicts the oldest entry when the capacity is exceeded.
func (s *Store) Append(f Fields) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := Notification{
		ID:        s.nextIDLocked(now),
		Title:     f.Title,
		Message:   f.Message,
		Type:      f.Type,
		Timestamp: f.Timestamp,
		Sender:    f.Sender,
	}
	if n.Type == "" {
		n.Type = TypeInfo
	}
	if n.Sender == "" {
		n.Sender = DefaultSender
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = now.UTC()
	}

	if len(s.items) < s.capacity {
		s.items = append(s.items, Notification{})
	}
	// Shifting right by one drops the tail when the slice is already full.
	copy(s.items[1:], s.items[:len(s.items)-1])
	s.items[0] = n

	return n
}

// nextIDLocked derives the id from the arrival time in milliseconds, bumped
// past the previous id so two appends in the same millisecond never collide.
func (s *Store) nextIDLocked(now time.Time) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// MarkRead flags the notification as read and returns the updated record.
// Marking an already-read notification succeeds without changes.
func (s *Store) MarkRead(id string) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return s.items[i], nil
		}
	}
	return Notification{}, fmt.Errorf("notification %q: %w", id, ErrNotFound)
}

// Get returns a copy of the notification with the given id.
func (s *Store) Get(id string) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.items {
		if n.ID == id {
			return n, nil
		}
	}
	return Notification{}, fmt.Errorf("notification %q: %w", id, ErrNotFound)
}

// Snapshot returns an independent copy of the collection, most recent first.
func (s *Store) Snapshot() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Clear drops every stored notification. Ids keep increasing afterwards.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.items)
	s.items = s.items[:0]
}
