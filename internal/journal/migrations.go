package journal

// migrations are applied in order; the index plus one is the schema version.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS hub_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		notification_id TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_hub_events_created_at ON hub_events(created_at);
	CREATE INDEX IF NOT EXISTS idx_hub_events_notification ON hub_events(notification_id);`,
}
