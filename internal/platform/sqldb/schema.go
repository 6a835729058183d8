package sqldb

import (
	"context"
	"fmt"
)

// Timestamps and dates are stored as TEXT so both dialects share one schema.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS plan_lessons (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  plan_id TEXT,
  title TEXT NOT NULL,
  description TEXT,
  content_ref TEXT,
  duration_minutes INTEGER NOT NULL DEFAULT 0,
  category TEXT,
  difficulty TEXT,
  date TEXT,
  order_index INTEGER NOT NULL DEFAULT 0,
  completed BOOLEAN NOT NULL DEFAULT FALSE,
  completed_at TEXT,
  created_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  episode_id TEXT NOT NULL,
  lesson_id TEXT,
  user_id TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT,
  progress_seconds INTEGER NOT NULL DEFAULT 0,
  completed BOOLEAN NOT NULL DEFAULT FALSE,
  source TEXT,
  device TEXT,
  updated_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS day_entries (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  date TEXT NOT NULL,
  plan_id TEXT,
  lessons_completed INTEGER NOT NULL DEFAULT 0,
  minutes_learned INTEGER NOT NULL DEFAULT 0,
  streak_active BOOLEAN NOT NULL DEFAULT FALSE,
  UNIQUE (user_id, date)
)`,
	`CREATE INDEX IF NOT EXISTS idx_day_entries_user_date ON day_entries (user_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_lessons_user ON plan_lessons (user_id, order_index)`,
}

func (db *DB) ensureSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
