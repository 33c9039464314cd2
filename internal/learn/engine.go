package learn

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hurttlocker/persona/internal/analyze"
	"github.com/hurttlocker/persona/internal/config"
	"github.com/hurttlocker/persona/internal/pattern"
)

// Engine wires the analyzer, tracker, synthesizer and merger into one
// learning cycle. It is pure computation over caller-supplied values: the
// caller owns persistence and must serialize merge+persist per user.
type Engine struct {
	cfg      config.Config
	analyzer *analyze.Analyzer
	tracker  *pattern.Tracker
	synth    *Synthesizer
	merger   *Merger
	now      func() time.Time
}

// Result is the outcome of one learning cycle.
type Result struct {
	// Analysis of the newest interaction in the cycle.
	Analysis analyze.Result `json:"analysis"`

	// Summary is the refreshed behavioral snapshot over the full history.
	Summary *pattern.Summary `json:"summary"`

	// StyleScores are per-register writing style signals for the newest
	// interaction (formal, casual, technical, friendly).
	StyleScores map[string]float64 `json:"style_scores,omitempty"`

	// Upserts are the fact mutations for the collaborator to apply.
	Upserts []FactUpsert `json:"upserts,omitempty"`

	Insights []Insight `json:"insights,omitempty"`

	InteractionsProcessed int `json:"interactions_processed"`
	FactsCreated          int `json:"facts_created"`
	FactsUpdated          int `json:"facts_updated"`
}

// NewEngine validates the config and constructs an Engine. Malformed
// thresholds fail here, never at call time.
func NewEngine(cfg config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		analyzer: analyze.New(cfg),
		tracker:  pattern.New(cfg),
		synth:    NewSynthesizer(cfg),
		merger:   NewMerger(cfg),
		now:      time.Now,
	}, nil
}

// Analyzer exposes the engine's text analyzer for callers that want
// per-interaction analysis without a learning cycle.
func (e *Engine) Analyzer() *analyze.Analyzer {
	return e.analyzer
}

// Learn runs one learning cycle: analyze the new interaction, refresh the
// pattern summary over history plus the new interaction, synthesize
// candidates and merge them against the existing fact set.
//
// history holds the user's prior interactions ordered most-recent-last and
// excludes the new interaction. existing maps (category, key) to the
// current stored facts; Learn never mutates it.
func (e *Engine) Learn(interaction Interaction, history []Interaction, existing map[FactKey]*LearnedFact) (*Result, error) {
	return e.LearnBatch([]Interaction{interaction}, history, existing)
}

// LearnBatch processes several new interactions in one cycle. Analysis runs
// independently per interaction; the pattern summary and merge run once
// over the deterministic, time-ordered whole after all analyses complete.
func (e *Engine) LearnBatch(batch []Interaction, history []Interaction, existing map[FactKey]*LearnedFact) (*Result, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("learn: empty batch")
	}

	ordered := make([]Interaction, len(batch))
	copy(ordered, batch)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
	})

	analyses, err := e.analyzeAll(ordered)
	if err != nil {
		return nil, err
	}

	obs, intents := e.observeHistory(history)
	for i, in := range ordered {
		obs = append(obs, observation(in, analyses[i]))
		intents = append(intents, analyses[i].Intent)
	}

	summary, err := e.tracker.Summarize(obs)
	if err != nil {
		return nil, fmt.Errorf("summarizing history: %w", err)
	}

	result := &Result{
		Analysis:              analyses[len(analyses)-1],
		StyleScores:           analyze.StyleScores(ordered[len(ordered)-1].Text),
		Summary:               summary,
		InteractionsProcessed: len(ordered),
	}

	// Below the learning floor there is no pattern yet: report the summary
	// but synthesize nothing.
	if len(obs) < e.cfg.MinInteractions {
		return result, nil
	}

	var candidates []CandidateFact
	for i, in := range ordered {
		// Summary-derived candidates attach to the newest interaction only;
		// per-interaction candidates are emitted for every batch member.
		var sum *pattern.Summary
		if i == len(ordered)-1 {
			sum = summary
		}
		candidates = append(candidates, e.synth.Synthesize(analyses[i], sum, in)...)
	}

	result.Upserts = e.merger.Merge(existing, candidates, ordered[len(ordered)-1].UserID, e.now().UTC())
	for _, up := range result.Upserts {
		if up.Op == OpInsert {
			result.FactsCreated++
		} else {
			result.FactsUpdated++
		}
	}

	result.Insights = generateInsights(obs, intents)
	return result, nil
}

// Summarize recomputes the behavioral snapshot for a history without
// running fact synthesis. Used by collaborators to rebuild a missing
// analytics snapshot.
func (e *Engine) Summarize(history []Interaction) (*pattern.Summary, error) {
	obs, _ := e.observeHistory(history)
	return e.tracker.Summarize(obs)
}

// analyzeAll analyzes a batch. Each interaction is independent, so analyses
// run concurrently; results land in input order. Blank text anywhere in
// the batch fails the whole call — callers filter blanks upstream.
func (e *Engine) analyzeAll(batch []Interaction) ([]analyze.Result, error) {
	analyses := make([]analyze.Result, len(batch))
	errs := make([]error, len(batch))

	if len(batch) == 1 {
		res, err := e.analyzer.Analyze(batch[0].Text)
		if err != nil {
			return nil, fmt.Errorf("analyzing interaction %s: %w", batch[0].ID, err)
		}
		analyses[0] = res
		return analyses, nil
	}

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			analyses[i], errs[i] = e.analyzer.Analyze(batch[i].Text)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("analyzing interaction %s: %w", batch[i].ID, err)
		}
	}
	return analyses, nil
}

// observeHistory re-analyzes prior interactions into tracker observations.
// Blank or unanalyzable history entries are skipped rather than failing the
// cycle; the new interaction's stricter validation happens in analyzeAll.
func (e *Engine) observeHistory(history []Interaction) ([]pattern.Observation, []analyze.Intent) {
	obs := make([]pattern.Observation, 0, len(history))
	intents := make([]analyze.Intent, 0, len(history))
	for _, in := range history {
		res, err := e.analyzer.Analyze(in.Text)
		if err != nil {
			continue
		}
		obs = append(obs, observation(in, res))
		intents = append(intents, res.Intent)
	}
	return obs, intents
}

func observation(in Interaction, res analyze.Result) pattern.Observation {
	return pattern.Observation{
		OccurredAt: in.OccurredAt,
		Sentiment:  res.Sentiment,
		TokenCount: len(analyze.Tokenize(in.Text)),
		Topics:     res.Topics,
	}
}
