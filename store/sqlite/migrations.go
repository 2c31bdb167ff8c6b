package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the activity store (SQLite).
var Migrations = migrate.NewGroup("scribe")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_activity_log",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS scribe_activity_log (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    level           TEXT NOT NULL DEFAULT 'info',
    event           TEXT NOT NULL DEFAULT '',
    subject_type    TEXT NOT NULL DEFAULT '',
    subject_id      TEXT NOT NULL DEFAULT '',
    subject         TEXT NOT NULL DEFAULT '',
    causer_type     TEXT NOT NULL DEFAULT '',
    causer_id       TEXT NOT NULL DEFAULT '',
    causer          TEXT NOT NULL DEFAULT '',
    properties      TEXT NOT NULL DEFAULT '',
    batch_id        TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_scribe_activity_subject ON scribe_activity_log (subject_type, subject_id);
CREATE INDEX IF NOT EXISTS idx_scribe_activity_causer ON scribe_activity_log (causer_type, causer_id);
CREATE INDEX IF NOT EXISTS idx_scribe_activity_event ON scribe_activity_log (event);
CREATE INDEX IF NOT EXISTS idx_scribe_activity_level ON scribe_activity_log (level);
CREATE INDEX IF NOT EXISTS idx_scribe_activity_batch ON scribe_activity_log (batch_id);
CREATE INDEX IF NOT EXISTS idx_scribe_activity_created ON scribe_activity_log (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS scribe_activity_log`)
				return err
			},
		},
	)
}
