package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. The whole list re-runs on every open:
// CREATE statements are guarded by IF NOT EXISTS, and "duplicate column
// name" errors from re-run ALTER TABLE statements are tolerated.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// Named logical records (preferences, completion set, layout hints),
	// one JSON value per key.
	`CREATE TABLE IF NOT EXISTS kv_records (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	// Mutations queued after a connectivity failure, replayed in queue order.
	`CREATE TABLE IF NOT EXISTS pending_changes (
		id        TEXT PRIMARY KEY,
		op        TEXT NOT NULL CHECK(op IN ('create','update','delete')),
		course_id TEXT NOT NULL DEFAULT '',
		payload   TEXT NOT NULL,
		queued_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_pending_changes_queued ON pending_changes(queued_at)`,

	// Queued deletes remember whether dependents were to be removed too.
	`ALTER TABLE pending_changes ADD COLUMN cascade_delete INTEGER NOT NULL DEFAULT 0`,
}
