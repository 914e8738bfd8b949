// Package journal keeps an append-only SQLite audit trail of hub events.
// The journal is write-only from the hub's point of view: it is never
// replayed into the notification store.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/btouchard/beacon/internal/hub"
)

// Fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const cleanupInterval = time.Hour

// Entry is one journaled hub event.
type Entry struct {
	ID             int64           `json:"id"`
	Kind           string          `json:"kind"`
	NotificationID string          `json:"notification_id,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SQLiteJournal stores entries using modernc.org/sqlite (pure Go, zero CGO).
type SQLiteJournal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the journal database and runs migrations.
// The database file is created with 0600 permissions and its parent directory with 0700.
func Open(path string) (*SQLiteJournal, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return nil, fmt.Errorf("creating journal file: %w", err)
			}
			_ = f.Close()
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time
	db.SetMaxIdleConns(1)

	j := &SQLiteJournal{db: db, now: time.Now}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) migrate() error {
	_, err := j.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	row := j.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		slog.Info("applying journal migration", "version", i+1)
		if _, err := j.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := j.db.Exec("INSERT INTO schema_version (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// Record appends a hub event to the journal.
func (j *SQLiteJournal) Record(ev hub.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	var notificationID string
	if ev.Kind != hub.KindFullSnapshot {
		notificationID = ev.Notification.ID
	}

	_, err = j.db.Exec(`INSERT INTO hub_events (kind, notification_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		ev.Type(), notificationID, string(payload), j.now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or
// less returns every entry.
func (j *SQLiteJournal) Recent(limit int) ([]Entry, error) {
	query := "SELECT id, kind, notification_id, payload, created_at FROM hub_events ORDER BY id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var payload, createdAt string
		if err := rows.Scan(&e.ID, &e.Kind, &e.NotificationID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Payload = json.RawMessage(payload)
		e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Cleanup deletes entries recorded before cutoff and returns how many were removed.
func (j *SQLiteJournal) Cleanup(cutoff time.Time) (int64, error) {
	res, err := j.db.Exec("DELETE FROM hub_events WHERE created_at < ?", cutoff.UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("cleaning events: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Source is a lossy event stream, such as a *hub.Subscriber.
type Source interface {
	Events() <-chan hub.Event
	Dropped() int64
}

// Run records every event received from src until its channel closes or
// ctx is cancelled. Events the source discarded are gone from the journal;
// each loss is logged as a warning. Entries older than retention are purged
// hourly; a zero retention keeps everything.
func (j *SQLiteJournal) Run(ctx context.Context, src Source, retention time.Duration) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	var seenDropped int64
	events := src.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if d := src.Dropped(); d > seenDropped {
				slog.Warn("journal lagging, events not recorded", "lost", d-seenDropped, "dropped_total", d)
				seenDropped = d
			}
			if err := j.Record(ev); err != nil {
				slog.Error("journal write failed", "kind", ev.Type(), "error", err)
			}
		case <-ticker.C:
			if retention <= 0 {
				continue
			}
			removed, err := j.Cleanup(j.now().Add(-retention))
			if err != nil {
				slog.Error("journal cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("journal cleanup", "removed", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}
