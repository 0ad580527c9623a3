package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		client_name TEXT NOT NULL DEFAULT '',
		city        TEXT NOT NULL DEFAULT '',
		address     TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS stages (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		is_active   INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_stages_project ON stages(project_id, order_index)`,

	`CREATE TABLE IF NOT EXISTS units (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		identifier TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending'
		           CHECK(status IN ('pending','in_progress','done')),
		progress   INTEGER NOT NULL DEFAULT 0
		           CHECK(progress BETWEEN 0 AND 100),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_units_project ON units(project_id)`,

	// stage_id is a weak reference: instances survive template changes, so
	// there is no foreign key to stages.
	`CREATE TABLE IF NOT EXISTS unit_stages (
		id          TEXT PRIMARY KEY,
		unit_id     TEXT NOT NULL REFERENCES units(id) ON DELETE CASCADE,
		stage_id    TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'pending'
		            CHECK(status IN ('pending','in_progress','done')),
		custom_name TEXT,
		order_index INTEGER NOT NULL DEFAULT 0,
		started_at  TEXT,
		finished_at TEXT,
		notes       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_unit_stages_pair ON unit_stages(unit_id, stage_id)`,
	`CREATE INDEX IF NOT EXISTS idx_unit_stages_stage ON unit_stages(stage_id)`,

	`CREATE TABLE IF NOT EXISTS unit_stage_photos (
		id            TEXT PRIMARY KEY,
		unit_stage_id TEXT NOT NULL REFERENCES unit_stages(id),
		path          TEXT NOT NULL,
		caption       TEXT NOT NULL DEFAULT '',
		kind          TEXT NOT NULL DEFAULT 'general',
		content_type  TEXT NOT NULL DEFAULT '',
		size          INTEGER NOT NULL DEFAULT 0,
		uploaded_by   TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_photos_unit_stage ON unit_stage_photos(unit_stage_id)`,

	`CREATE TABLE IF NOT EXISTS unit_stage_logs (
		id            TEXT PRIMARY KEY,
		unit_stage_id TEXT NOT NULL REFERENCES unit_stages(id),
		user_id       TEXT NOT NULL,
		action        TEXT NOT NULL
		              CHECK(action IN ('status_changed','notes_updated','photo_added','photo_deleted')),
		old_value     TEXT,
		new_value     TEXT,
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_logs_unit_stage ON unit_stage_logs(unit_stage_id, created_at)`,
}
