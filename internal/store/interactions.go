package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hurttlocker/persona/internal/learn"
)

// AddInteraction records a raw interaction. A blank ID gets a fresh UUID;
// a blank type defaults to "message" and a zero timestamp to now.
func (s *SQLiteStore) AddInteraction(ctx context.Context, in *learn.Interaction) error {
	if in.UserID == "" {
		return fmt.Errorf("adding interaction: user id required")
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Type == "" {
		in.Type = "message"
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, user_id, text, type, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.Text, in.Type, in.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting interaction: %w", err)
	}
	return nil
}

// GetInteraction retrieves an interaction by ID. Returns nil when absent.
func (s *SQLiteStore) GetInteraction(ctx context.Context, id string) (*learn.Interaction, error) {
	in := &learn.Interaction{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, text, type, occurred_at
		 FROM interactions WHERE id = ?`, id,
	).Scan(&in.ID, &in.UserID, &in.Text, &in.Type, &in.OccurredAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting interaction %s: %w", id, err)
	}
	return in, nil
}

// ListInteractions returns a user's interactions in chronological order,
// capped at limit (the store's history limit when limit <= 0). When more
// exist than the cap, the most recent ones are returned.
func (s *SQLiteStore) ListInteractions(ctx context.Context, userID string, limit int) ([]learn.Interaction, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}

	// Newest-first with a cap, then reversed, so the cap trims the oldest.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, text, type, occurred_at
		 FROM interactions WHERE user_id = ?
		 ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing interactions: %w", err)
	}
	defer rows.Close()

	var history []learn.Interaction
	for rows.Next() {
		var in learn.Interaction
		if err := rows.Scan(&in.ID, &in.UserID, &in.Text, &in.Type, &in.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning interaction row: %w", err)
		}
		history = append(history, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// CountInteractions returns how many interactions a user has recorded.
func (s *SQLiteStore) CountInteractions(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM interactions WHERE user_id = ?", userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting interactions: %w", err)
	}
	return n, nil
}
