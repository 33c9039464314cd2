// Package store provides the SQLite persistence layer for persona.
//
// All per-user data lives in a single SQLite database file:
// - Raw interactions with timestamps and provenance
// - Learned facts with their confidence and evidence ledger
// - Cached pattern summaries for the analytics surface
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hurttlocker/persona/internal/learn"
	"github.com/hurttlocker/persona/internal/pattern"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.persona/persona.db"

// DefaultHistoryLimit caps how many prior interactions a learning cycle
// replays when none is given.
const DefaultHistoryLimit = 1000

// FactListOpts controls filtering for ListFacts.
type FactListOpts struct {
	Category   learn.Category
	Confidence learn.Confidence
	Limit      int
}

// StoreStats holds observability statistics about the store.
type StoreStats struct {
	UserCount        int64 `json:"user_count"`
	InteractionCount int64 `json:"interaction_count"`
	FactCount        int64 `json:"fact_count"`
	SnapshotCount    int64 `json:"snapshot_count"`
	DBSizeBytes      int64 `json:"db_size_bytes"`
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath       string
	HistoryLimit int
}

// Store defines the persistence interface the profiler drives.
type Store interface {
	// Interactions
	AddInteraction(ctx context.Context, in *learn.Interaction) error
	GetInteraction(ctx context.Context, id string) (*learn.Interaction, error)
	ListInteractions(ctx context.Context, userID string, limit int) ([]learn.Interaction, error)
	CountInteractions(ctx context.Context, userID string) (int64, error)

	// Facts
	FactsByUser(ctx context.Context, userID string) (map[learn.FactKey]*learn.LearnedFact, error)
	ListFacts(ctx context.Context, userID string, opts FactListOpts) ([]*learn.LearnedFact, error)
	ApplyUpserts(ctx context.Context, upserts []learn.FactUpsert) error

	// Pattern snapshots
	SavePatternSummary(ctx context.Context, userID string, sum *pattern.Summary) error
	GetPatternSummary(ctx context.Context, userID string) (*pattern.Summary, error)

	// Observability
	Stats(ctx context.Context) (*StoreStats, error)
	ListUsers(ctx context.Context) ([]string, error)

	// Privacy
	DeleteUser(ctx context.Context, userID string) error

	// Maintenance
	Vacuum(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db           *sql.DB
	dbPath       string
	historyLimit int
}

// NewStore creates a new SQLite-backed Store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}

	// Create parent directory for non-memory databases
	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Enable WAL mode and foreign keys
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{
		db:           db,
		dbPath:       cfg.DBPath,
		historyLimit: cfg.HistoryLimit,
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Vacuum runs VACUUM on the database. Manual only — never auto-vacuum.
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// Stats returns row counts and database size for the analytics surface.
func (s *SQLiteStore) Stats(ctx context.Context) (*StoreStats, error) {
	st := &StoreStats{}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(DISTINCT user_id) FROM interactions", &st.UserCount},
		{"SELECT COUNT(*) FROM interactions", &st.InteractionCount},
		{"SELECT COUNT(*) FROM learned_facts", &st.FactCount},
		{"SELECT COUNT(*) FROM pattern_snapshots", &st.SnapshotCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting rows: %w", err)
		}
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("reading page_count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("reading page_size: %w", err)
	}
	st.DBSizeBytes = pageCount * pageSize

	return st, nil
}

// ListUsers returns every user id with recorded interactions.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT user_id FROM interactions ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// DeleteUser removes every trace of a user: interactions, facts, evidence
// and snapshots, in one transaction.
func (s *SQLiteStore) DeleteUser(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		"DELETE FROM fact_evidence WHERE fact_id IN (SELECT id FROM learned_facts WHERE user_id = ?)",
		"DELETE FROM learned_facts WHERE user_id = ?",
		"DELETE FROM pattern_snapshots WHERE user_id = ?",
		"DELETE FROM interactions WHERE user_id = ?",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return fmt.Errorf("deleting user data: %w", err)
		}
	}

	return tx.Commit()
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
