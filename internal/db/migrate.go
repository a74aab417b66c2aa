package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and
// re-run on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS profile (
		id                 TEXT PRIMARY KEY,
		level              INTEGER NOT NULL DEFAULT 1 CHECK(level >= 1),
		xp                 INTEGER NOT NULL DEFAULT 0 CHECK(xp >= 0),
		coins              INTEGER NOT NULL DEFAULT 0 CHECK(coins >= 0),
		streak_count       INTEGER NOT NULL DEFAULT 0 CHECK(streak_count >= 0),
		streak_last_active TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS quest_progress (
		quest_id       TEXT PRIMARY KEY,
		completed_reps INTEGER NOT NULL DEFAULT 0 CHECK(completed_reps >= 0),
		attempts_made  INTEGER NOT NULL DEFAULT 0 CHECK(attempts_made >= 0),
		completed      INTEGER NOT NULL DEFAULT 0,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS concept_quests (
		concept_id TEXT NOT NULL,
		quest_id   TEXT NOT NULL,
		PRIMARY KEY (concept_id, quest_id)
	)`,

	`CREATE TABLE IF NOT EXISTS concept_stages (
		concept_id TEXT NOT NULL,
		stage_id   TEXT NOT NULL,
		PRIMARY KEY (concept_id, stage_id)
	)`,

	`CREATE TABLE IF NOT EXISTS achievements (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		unlocked_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS validation_log (
		id         TEXT PRIMARY KEY,
		quest_id   TEXT NOT NULL,
		score      INTEGER NOT NULL,
		passed     INTEGER NOT NULL,
		feedback   TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_validation_log_quest ON validation_log(quest_id)`,

	`CREATE TABLE IF NOT EXISTS knowledge_results (
		id         TEXT PRIMARY KEY,
		concept_id TEXT NOT NULL,
		stage_id   TEXT NOT NULL,
		type       TEXT NOT NULL,
		score      INTEGER NOT NULL,
		passed     INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_knowledge_results_stage ON knowledge_results(concept_id, stage_id)`,
}
