package hub

import (
	"encoding/json"

	"github.com/btouchard/beacon/internal/notification"
)

// Kind identifies the event variant.
type Kind string

const (
	KindFullSnapshot Kind = "full-snapshot"
	KindCreated      Kind = "created"
	KindUpdated      Kind = "updated"
)

// Event is one of three variants: a full snapshot carrying Notifications,
// or a created/updated event carrying a single Notification. Events are
// shared between subscribers and must be treated as read-only.
type Event struct {
	Kind          Kind                        `json:"type"`
	Notification  notification.Notification   `json:"notification"`
	Notifications []notification.Notification `json:"notifications"`
}

// FullSnapshot builds a full-snapshot event.
func FullSnapshot(list []notification.Notification) Event {
	if list == nil {
		list = []notification.Notification{}
	}
	return Event{Kind: KindFullSnapshot, Notifications: list}
}

// Created builds a created event.
func Created(n notification.Notification) Event {
	return Event{Kind: KindCreated, Notification: n}
}

// Updated builds an updated event.
func Updated(n notification.Notification) Event {
	return Event{Kind: KindUpdated, Notification: n}
}

// Type returns the event kind as a string.
func (e Event) Type() string {
	return string(e.Kind)
}

// MarshalJSON emits only the payload field that belongs to the variant.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == KindFullSnapshot {
		list := e.Notifications
		if list == nil {
			list = []notification.Notification{}
		}
		return json.Marshal(struct {
			Type          Kind                        `json:"type"`
			Notifications []notification.Notification `json:"notifications"`
		}{e.Kind, list})
	}
	return json.Marshal(struct {
		Type         Kind                      `json:"type"`
		Notification notification.Notification `json:"notification"`
	}{e.Kind, e.Notification})
}
