package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hurttlocker/persona/internal/pattern"
)

// SavePatternSummary caches a user's behavioral snapshot as JSON. The
// interaction log stays authoritative; the snapshot is rebuildable.
func (s *SQLiteStore) SavePatternSummary(ctx context.Context, userID string, sum *pattern.Summary) error {
	if sum == nil {
		return fmt.Errorf("saving pattern summary: nil summary")
	}

	body, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("encoding pattern summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pattern_snapshots (user_id, summary, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			summary = excluded.summary,
			updated_at = excluded.updated_at`,
		userID, string(body), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving pattern summary: %w", err)
	}
	return nil
}

// GetPatternSummary returns the cached snapshot, or nil when none exists.
func (s *SQLiteStore) GetPatternSummary(ctx context.Context, userID string) (*pattern.Summary, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT summary FROM pattern_snapshots WHERE user_id = ?", userID,
	).Scan(&body)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading pattern summary: %w", err)
	}

	sum := &pattern.Summary{}
	if err := json.Unmarshal([]byte(body), sum); err != nil {
		return nil, fmt.Errorf("decoding pattern summary: %w", err)
	}
	return sum, nil
}
