package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hurttlocker/persona/internal/config"
	"github.com/hurttlocker/persona/internal/learn"
	"github.com/hurttlocker/persona/internal/pattern"
)

// Profiler drives complete learning cycles against the store: log an
// interaction, learn from it, persist the resulting facts and snapshot.
//
// Cycles for the same user are serialized with a per-user mutex so two
// concurrent LogInteraction calls cannot merge against a stale fact set.
// Different users proceed in parallel.
type Profiler struct {
	store  Store
	engine *learn.Engine

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewInteraction is an incoming interaction before the store assigns its
// identity. Zero OccurredAt means now; blank Type means "message".
type NewInteraction struct {
	Text       string
	Type       string
	OccurredAt time.Time
}

// Profile is a user's learned fact set grouped by category.
type Profile struct {
	UserID       string                                  `json:"user_id"`
	Facts        map[learn.Category][]*learn.LearnedFact `json:"facts"`
	TotalFacts   int                                     `json:"total_facts"`
	Interactions int64                                   `json:"interactions"`
}

// NewProfiler validates the config and wires an engine to the store.
func NewProfiler(st Store, cfg config.Config) (*Profiler, error) {
	engine, err := learn.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Profiler{
		store:  st,
		engine: engine,
		users:  make(map[string]*sync.Mutex),
	}, nil
}

// Engine exposes the underlying learning engine.
func (p *Profiler) Engine() *learn.Engine {
	return p.engine
}

func (p *Profiler) userLock(userID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		p.users[userID] = lock
	}
	return lock
}

// LogInteraction records one interaction and runs a learning cycle over it.
func (p *Profiler) LogInteraction(ctx context.Context, userID string, in NewInteraction) (*learn.Result, error) {
	return p.LogBatch(ctx, userID, []NewInteraction{in})
}

// LogBatch records several interactions and runs a single learning cycle
// over all of them.
func (p *Profiler) LogBatch(ctx context.Context, userID string, batch []NewInteraction) (*learn.Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("logging interaction: user id required")
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("logging interaction: empty batch")
	}

	lock := p.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	interactions := make([]learn.Interaction, len(batch))
	for i, n := range batch {
		occurredAt := n.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = time.Now().UTC()
		}
		typ := n.Type
		if typ == "" {
			typ = "message"
		}
		interactions[i] = learn.Interaction{
			ID:         uuid.NewString(),
			UserID:     userID,
			Text:       n.Text,
			Type:       typ,
			OccurredAt: occurredAt,
		}
	}

	history, err := p.store.ListInteractions(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	existing, err := p.store.FactsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading facts: %w", err)
	}

	result, err := p.engine.LearnBatch(interactions, history, existing)
	if err != nil {
		return nil, err
	}

	// Persist only after the cycle succeeds: a rejected interaction (blank
	// text) leaves no trace.
	for i := range interactions {
		if err := p.store.AddInteraction(ctx, &interactions[i]); err != nil {
			return nil, err
		}
	}
	if err := p.store.ApplyUpserts(ctx, result.Upserts); err != nil {
		return nil, err
	}
	if result.Summary != nil {
		if err := p.store.SavePatternSummary(ctx, userID, result.Summary); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Profile returns a user's learned facts grouped by category.
func (p *Profiler) Profile(ctx context.Context, userID string) (*Profile, error) {
	facts, err := p.store.ListFacts(ctx, userID, FactListOpts{})
	if err != nil {
		return nil, err
	}
	count, err := p.store.CountInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		UserID:       userID,
		Facts:        make(map[learn.Category][]*learn.LearnedFact),
		TotalFacts:   len(facts),
		Interactions: count,
	}
	for _, f := range facts {
		profile.Facts[f.Category] = append(profile.Facts[f.Category], f)
	}
	return profile, nil
}

// Patterns returns the user's behavioral snapshot, serving the cached one
// when present and rebuilding it from the interaction log when not.
func (p *Profiler) Patterns(ctx context.Context, userID string) (*pattern.Summary, error) {
	if sum, err := p.store.GetPatternSummary(ctx, userID); err != nil {
		return nil, err
	} else if sum != nil {
		return sum, nil
	}

	lock := p.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	history, err := p.store.ListInteractions(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	sum, err := p.engine.Summarize(history)
	if err != nil {
		return nil, err
	}
	if err := p.store.SavePatternSummary(ctx, userID, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// Stats reports store-level counts for the analytics surface.
func (p *Profiler) Stats(ctx context.Context) (*StoreStats, error) {
	return p.store.Stats(ctx)
}

// Forget erases all stored data for a user.
func (p *Profiler) Forget(ctx context.Context, userID string) error {
	lock := p.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return p.store.DeleteUser(ctx, userID)
}
