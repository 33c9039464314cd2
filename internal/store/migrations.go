package store

import "fmt"

// migrate creates all tables if they don't exist. Every statement is
// idempotent, so migrate is safe to run on every open.
func (s *SQLiteStore) migrate() error {
	statements := []string{
		// Raw interaction log. IDs are caller-assigned UUIDs so replays
		// are detectable.
		`CREATE TABLE IF NOT EXISTS interactions (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			text        TEXT NOT NULL,
			type        TEXT NOT NULL DEFAULT 'message',
			occurred_at DATETIME NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_interactions_user_time
			ON interactions(user_id, occurred_at)`,

		// Learned facts, one row per (user, category, key).
		`CREATE TABLE IF NOT EXISTS learned_facts (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id        TEXT NOT NULL,
			category       TEXT NOT NULL,
			key            TEXT NOT NULL,
			value          TEXT NOT NULL,
			confidence     TEXT NOT NULL,
			evidence_count INTEGER NOT NULL DEFAULT 1,
			first_seen     DATETIME NOT NULL,
			last_updated   DATETIME NOT NULL,
			UNIQUE(user_id, category, key)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_facts_user_category
			ON learned_facts(user_id, category)`,

		// Evidence ledger linking facts to the interactions that support
		// them. The UNIQUE constraint is what makes merges idempotent
		// across process restarts.
		`CREATE TABLE IF NOT EXISTS fact_evidence (
			fact_id        INTEGER NOT NULL REFERENCES learned_facts(id) ON DELETE CASCADE,
			interaction_id TEXT NOT NULL,
			created_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(fact_id, interaction_id)
		)`,

		// Cached pattern summaries, one JSON blob per user. Rebuilt from
		// the interaction log whenever missing.
		`CREATE TABLE IF NOT EXISTS pattern_snapshots (
			user_id    TEXT PRIMARY KEY,
			summary    TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}
