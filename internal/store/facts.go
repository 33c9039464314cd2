package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/hurttlocker/persona/internal/learn"
)

// FactsByUser loads a user's full fact set keyed by (category, key),
// including each fact's evidence ledger. This is the `existing` input to a
// learning cycle's merge.
func (s *SQLiteStore) FactsByUser(ctx context.Context, userID string) (map[learn.FactKey]*learn.LearnedFact, error) {
	facts, ids, err := s.queryFacts(ctx,
		`SELECT id, user_id, category, key, value, confidence, evidence_count, first_seen, last_updated
		 FROM learned_facts WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}

	if err := s.attachEvidence(ctx, facts, ids); err != nil {
		return nil, err
	}

	byKey := make(map[learn.FactKey]*learn.LearnedFact, len(facts))
	for _, f := range facts {
		byKey[f.FactKey()] = f
	}
	return byKey, nil
}

// ListFacts returns a user's facts for display, optionally filtered by
// category or confidence, ordered by category then key.
func (s *SQLiteStore) ListFacts(ctx context.Context, userID string, opts FactListOpts) ([]*learn.LearnedFact, error) {
	query := `SELECT id, user_id, category, key, value, confidence, evidence_count, first_seen, last_updated
		 FROM learned_facts WHERE user_id = ?`
	args := []interface{}{userID}

	if opts.Category != "" {
		query += " AND category = ?"
		args = append(args, string(opts.Category))
	}
	if opts.Confidence != "" {
		query += " AND confidence = ?"
		args = append(args, string(opts.Confidence))
	}
	query += " ORDER BY category, key"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	facts, ids, err := s.queryFacts(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.attachEvidence(ctx, facts, ids); err != nil {
		return nil, err
	}
	return facts, nil
}

// ApplyUpserts persists a merge's output in one transaction. Evidence rows
// are INSERT OR IGNOREd, so reapplying the same upserts cannot double-count.
func (s *SQLiteStore) ApplyUpserts(ctx context.Context, upserts []learn.FactUpsert) error {
	if len(upserts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer tx.Rollback()

	for _, up := range upserts {
		f := up.Fact
		// ON CONFLICT covers the insert/update split: the merge decided the
		// final field values either way.
		_, err := tx.ExecContext(ctx,
			`INSERT INTO learned_facts (user_id, category, key, value, confidence, evidence_count, first_seen, last_updated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(user_id, category, key) DO UPDATE SET
				value = excluded.value,
				confidence = excluded.confidence,
				evidence_count = excluded.evidence_count,
				last_updated = excluded.last_updated`,
			f.UserID, string(f.Category), f.Key, f.Value, string(f.Confidence),
			f.EvidenceCount, f.FirstSeen.UTC(), f.LastUpdated.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting fact %s/%s: %w", f.Category, f.Key, err)
		}

		var factID int64
		err = tx.QueryRowContext(ctx,
			"SELECT id FROM learned_facts WHERE user_id = ? AND category = ? AND key = ?",
			f.UserID, string(f.Category), f.Key,
		).Scan(&factID)
		if err != nil {
			return fmt.Errorf("resolving fact id for %s/%s: %w", f.Category, f.Key, err)
		}

		for _, interactionID := range f.Evidence {
			if strings.TrimSpace(interactionID) == "" {
				continue
			}
			_, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO fact_evidence (fact_id, interaction_id) VALUES (?, ?)",
				factID, interactionID,
			)
			if err != nil {
				return fmt.Errorf("recording evidence for fact %d: %w", factID, err)
			}
		}
	}

	return tx.Commit()
}

// queryFacts runs a learned_facts SELECT and scans the rows, returning the
// facts and their row ids in matching order.
func (s *SQLiteStore) queryFacts(ctx context.Context, query string, args ...interface{}) ([]*learn.LearnedFact, []int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("querying facts: %w", err)
	}
	defer rows.Close()

	var facts []*learn.LearnedFact
	var ids []int64
	for rows.Next() {
		f := &learn.LearnedFact{}
		var id int64
		var category, confidence string
		if err := rows.Scan(&id, &f.UserID, &category, &f.Key, &f.Value,
			&confidence, &f.EvidenceCount, &f.FirstSeen, &f.LastUpdated); err != nil {
			return nil, nil, fmt.Errorf("scanning fact row: %w", err)
		}
		f.Category = learn.Category(category)
		f.Confidence = learn.Confidence(confidence)
		facts = append(facts, f)
		ids = append(ids, id)
	}
	return facts, ids, rows.Err()
}

// attachEvidence loads the evidence ledger for each fact, in insertion
// order. The order matters only for stability; membership drives merges.
func (s *SQLiteStore) attachEvidence(ctx context.Context, facts []*learn.LearnedFact, ids []int64) error {
	for i, f := range facts {
		rows, err := s.db.QueryContext(ctx,
			"SELECT interaction_id FROM fact_evidence WHERE fact_id = ? ORDER BY rowid",
			ids[i],
		)
		if err != nil {
			return fmt.Errorf("loading evidence for fact %d: %w", ids[i], err)
		}

		var evidence []string
		for rows.Next() {
			var interactionID string
			if err := rows.Scan(&interactionID); err != nil {
				rows.Close()
				return fmt.Errorf("scanning evidence row: %w", err)
			}
			evidence = append(evidence, interactionID)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
		f.Evidence = evidence
	}
	return nil
}
