package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hurttlocker/persona/internal/analyze"
	"github.com/hurttlocker/persona/internal/config"
	"github.com/hurttlocker/persona/internal/learn"
	"github.com/hurttlocker/persona/internal/pattern"
)

func newTestProfiler(t *testing.T) *Profiler {
	t.Helper()
	p, err := NewProfiler(newTestStore(t), config.Default())
	if err != nil {
		t.Fatalf("NewProfiler: %v", err)
	}
	return p
}

func TestProfiler_LogInteractionFullCycle(t *testing.T) {
	p := newTestProfiler(t)
	ctx := context.Background()

	res, err := p.LogInteraction(ctx, "u1", NewInteraction{
		Text:       "I love playing guitar and listening to jazz music!",
		OccurredAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("LogInteraction: %v", err)
	}
	if res.FactsCreated == 0 {
		t.Error("no facts created on first interaction")
	}

	profile, err := p.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Interactions != 1 {
		t.Errorf("Interactions = %d, want 1", profile.Interactions)
	}

	interests := profile.Facts[learn.CategoryInterest]
	keys := map[string]bool{}
	for _, f := range interests {
		keys[f.Key] = true
		if f.Confidence != learn.ConfidenceLow || f.EvidenceCount != 1 {
			t.Errorf("%s = %s/%d, want low/1", f.Key, f.Confidence, f.EvidenceCount)
		}
	}
	if !keys["interest_guitar"] || !keys["interest_jazz"] {
		t.Errorf("interest keys = %v, want guitar and jazz", keys)
	}

	// The snapshot was written as part of the cycle.
	sum, err := p.Patterns(ctx, "u1")
	if err != nil {
		t.Fatalf("Patterns: %v", err)
	}
	if sum.Interactions != 1 || sum.ModeHour() != 9 {
		t.Errorf("snapshot = %+v, want 1 interaction at hour 9", sum)
	}
}

func TestProfiler_EvidenceAccumulatesAcrossCalls(t *testing.T) {
	p := newTestProfiler(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := p.LogInteraction(ctx, "u1", NewInteraction{
			Text:       "I love playing guitar and listening to jazz music!",
			OccurredAt: time.Date(2026, 8, 20, 9+i, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("LogInteraction %d: %v", i, err)
		}
	}

	profile, err := p.Profile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range profile.Facts[learn.CategoryInterest] {
		if f.EvidenceCount != 5 {
			t.Errorf("%s: EvidenceCount = %d, want 5", f.Key, f.EvidenceCount)
		}
		if f.Confidence != learn.ConfidenceHigh {
			t.Errorf("%s: Confidence = %q, want high", f.Key, f.Confidence)
		}
	}
}

func TestProfiler_BlankTextLeavesNoTrace(t *testing.T) {
	p := newTestProfiler(t)
	ctx := context.Background()

	_, err := p.LogInteraction(ctx, "u1", NewInteraction{Text: "   "})
	if !errors.Is(err, analyze.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	profile, err := p.Profile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Interactions != 0 || profile.TotalFacts != 0 {
		t.Errorf("rejected interaction left traces: %+v", profile)
	}
}

func TestProfiler_LogBatch(t *testing.T) {
	p := newTestProfiler(t)
	ctx := context.Background()

	res, err := p.LogBatch(ctx, "u1", []NewInteraction{
		{Text: "I love guitar", OccurredAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)},
		{Text: "I love jazz", OccurredAt: time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("LogBatch: %v", err)
	}
	if res.InteractionsProcessed != 2 {
		t.Errorf("InteractionsProcessed = %d, want 2", res.InteractionsProcessed)
	}

	profile, err := p.Profile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Interactions != 2 {
		t.Errorf("Interactions = %d, want 2", profile.Interactions)
	}
}

func TestProfiler_PatternsRebuildsMissingSnapshot(t *testing.T) {
	st := newTestStore(t)
	p, err := NewProfiler(st, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// Interactions recorded outside a learning cycle: no snapshot exists.
	for i, text := range []string{"I love jazz", "Guitar practice went well"} {
		in := storedInteraction(fmt.Sprintf("i%d", i), "u1", 9, text)
		if err := st.AddInteraction(ctx, &in); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := p.Patterns(ctx, "u1")
	if err != nil {
		t.Fatalf("Patterns: %v", err)
	}
	if sum.Interactions != 2 {
		t.Errorf("Interactions = %d, want 2 (rebuilt from log)", sum.Interactions)
	}

	// The rebuild was cached.
	cached, err := st.GetPatternSummary(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if cached == nil || cached.Interactions != 2 {
		t.Errorf("cached snapshot = %+v, want the rebuilt summary", cached)
	}
}

func TestProfiler_PatternsNoHistory(t *testing.T) {
	p := newTestProfiler(t)

	if _, err := p.Patterns(context.Background(), "ghost"); !errors.Is(err, pattern.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestProfiler_Forget(t *testing.T) {
	p := newTestProfiler(t)
	ctx := context.Background()

	if _, err := p.LogInteraction(ctx, "u1", NewInteraction{Text: "I love jazz"}); err != nil {
		t.Fatal(err)
	}
	if err := p.Forget(ctx, "u1"); err != nil {
		t.Fatalf("Forget: %v", err)
	}

	profile, err := p.Profile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Interactions != 0 || profile.TotalFacts != 0 {
		t.Errorf("data survived Forget: %+v", profile)
	}
	if sum, _ := p.Engine().Summarize(nil); sum != nil {
		t.Errorf("unexpected summary from empty history: %+v", sum)
	}
}

func TestProfiler_ConcurrentUsers(t *testing.T) {
	p := newTestProfiler(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i%2)
			_, errs[i] = p.LogInteraction(ctx, user, NewInteraction{
				Text:       "I love jazz",
				OccurredAt: time.Date(2026, 8, 20, 9, 0, 0, i, time.UTC),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}

	for _, user := range []string{"u0", "u1"} {
		profile, err := p.Profile(ctx, user)
		if err != nil {
			t.Fatal(err)
		}
		if profile.Interactions != 4 {
			t.Errorf("%s: Interactions = %d, want 4", user, profile.Interactions)
		}
		for _, f := range profile.Facts[learn.CategoryInterest] {
			if f.Key == "interest_jazz" && f.EvidenceCount != 4 {
				t.Errorf("%s: jazz evidence = %d, want 4 (serialized per user)", user, f.EvidenceCount)
			}
		}
	}
}
