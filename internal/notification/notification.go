// Package notification holds the notification record and the bounded
// in-memory store that owns the authoritative collection.
package notification

import (
	"errors"
	"time"
)

// Type is the notification category label. The set is open: senders may
// supply their own strings.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// DefaultSender labels notifications submitted without a sender.
const DefaultSender = "system"

// DefaultCapacity is the retention bound used when none is configured.
const DefaultCapacity = 100

// ErrNotFound is returned when a notification id is unknown or was evicted.
var ErrNotFound = errors.New("notification not found")

// Notification is a single stored notification. It only holds value fields,
// so copying the struct yields an independent record.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Read      bool      `json:"read"`
}

// Fields are the sender-supplied values for a new notification.
// Zero values are replaced by defaults on append.
type Fields struct {
	Title     string
	Message   string
	Type      Type
	Timestamp time.Time
	Sender    string
}
