package db

import (
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent, so the
// full list is replayed on each open.
func Migrate(db *DB) error {
	for i, stmt := range migrations {
		if _, err := db.DB.Exec(stmt); err != nil {
			// Tolerate re-applied ALTER TABLE ... ADD COLUMN statements.
			if isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate column name") ||
		(strings.Contains(msg, "column") && strings.Contains(msg, "already exists"))
}

var migrations = []string{
	// Directory tables stand in for the external identity and task services.
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL DEFAULT 'employee'
		           CHECK(role IN ('super_admin','project_manager','team_leader','employee')),
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS task_assignments (
		task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (task_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_assignments_user ON task_assignments(user_id)`,

	`CREATE TABLE IF NOT EXISTS time_logs (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		task_id      TEXT NOT NULL,
		project_id   TEXT NOT NULL DEFAULT '',
		log_date     TEXT NOT NULL,
		started_at   TEXT NOT NULL,
		ended_at     TEXT NOT NULL,
		duration_sec INTEGER NOT NULL CHECK(duration_sec > 0),
		source       TEXT NOT NULL
		             CHECK(source IN ('manual','timer')),
		description  TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_time_logs_user_date ON time_logs(user_id, log_date)`,
	`CREATE INDEX IF NOT EXISTS idx_time_logs_cell ON time_logs(user_id, task_id, log_date)`,

	// One row per user: the primary key is the single-active-timer constraint.
	`CREATE TABLE IF NOT EXISTS active_timers (
		user_id    TEXT PRIMARY KEY,
		id         TEXT NOT NULL UNIQUE,
		task_id    TEXT NOT NULL,
		project_id TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		active     INTEGER NOT NULL DEFAULT 1 CHECK(active = 1)
	)`,

	`CREATE TABLE IF NOT EXISTS timesheets (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		week_id          TEXT NOT NULL,
		week_start       TEXT NOT NULL,
		week_end         TEXT NOT NULL,
		total_sec        INTEGER NOT NULL DEFAULT 0 CHECK(total_sec >= 0),
		status           TEXT NOT NULL DEFAULT 'draft'
		                 CHECK(status IN ('draft','submitted','approved','rejected')),
		rejection_reason TEXT NOT NULL DEFAULT '',
		submitted_at     TEXT,
		approved_at      TEXT,
		approved_by      TEXT NOT NULL DEFAULT '',
		rejected_at      TEXT,
		rejected_by      TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_timesheets_user_week ON timesheets(user_id, week_id)`,
	`CREATE INDEX IF NOT EXISTS idx_timesheets_status ON timesheets(status)`,
}
