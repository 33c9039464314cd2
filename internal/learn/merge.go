package learn

import (
	"time"

	"github.com/hurttlocker/persona/internal/config"
)

// Merger reconciles candidate facts against a user's existing fact set.
//
// Merge is idempotent: evidence increments only for supporting interaction
// IDs not already recorded against the fact, at most once per distinct ID
// per call, so replaying the same candidates against the updated set
// produces no further change.
type Merger struct {
	lowMax    int
	mediumMax int
}

// NewMerger builds a Merger from a validated config.
func NewMerger(cfg config.Config) *Merger {
	return &Merger{
		lowMax:    cfg.Confidence.LowMax,
		mediumMax: cfg.Confidence.MediumMax,
	}
}

// confidenceFor maps an evidence count to its tier. Pure and monotonic in
// the count; never consulted independently of it.
func (m *Merger) confidenceFor(evidenceCount int) Confidence {
	switch {
	case evidenceCount <= m.lowMax:
		return ConfidenceLow
	case evidenceCount <= m.mediumMax:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// Merge groups candidates by (category, key) and produces one upsert per
// group that changes state. The caller persists the upserts and must
// serialize merges per user; Merge itself never mutates `existing`.
func (m *Merger) Merge(existing map[FactKey]*LearnedFact, candidates []CandidateFact, userID string, now time.Time) []FactUpsert {
	groups, order := groupCandidates(candidates)

	var upserts []FactUpsert
	for _, key := range order {
		group := groups[key]
		latest := group[len(group)-1]

		prior, ok := existing[key]
		if !ok {
			upserts = append(upserts, m.insert(key, group, latest, userID, now))
			continue
		}
		if up, changed := m.update(prior, group, latest, now); changed {
			upserts = append(upserts, up)
		}
	}
	return upserts
}

func (m *Merger) insert(key FactKey, group []CandidateFact, latest CandidateFact, userID string, now time.Time) FactUpsert {
	evidence := distinctIDs(group, nil)
	count := len(evidence)
	if count == 0 {
		// Candidates without supporting IDs still create the fact with a
		// single evidence unit; a fact never exists with zero evidence.
		count = 1
	}
	return FactUpsert{
		Op: OpInsert,
		Fact: LearnedFact{
			UserID:        userID,
			Category:      key.Category,
			Key:           key.Key,
			Value:         latest.Value,
			Confidence:    m.confidenceFor(count),
			EvidenceCount: count,
			Evidence:      evidence,
			FirstSeen:     now,
			LastUpdated:   now,
		},
	}
}

func (m *Merger) update(prior *LearnedFact, group []CandidateFact, latest CandidateFact, now time.Time) (FactUpsert, bool) {
	seen := make(map[string]bool, len(prior.Evidence))
	for _, id := range prior.Evidence {
		seen[id] = true
	}
	newIDs := distinctIDs(group, seen)

	valueChanged := latest.Value != prior.Value
	if len(newIDs) == 0 && !valueChanged {
		return FactUpsert{}, false
	}

	next := *prior
	next.EvidenceCount = prior.EvidenceCount + len(newIDs)
	next.Evidence = append(append([]string(nil), prior.Evidence...), newIDs...)
	next.Value = latest.Value
	next.LastUpdated = now

	// Recompute from the new count, but never downgrade: evidence is
	// monotonic under normal operation, and threshold changes between runs
	// must not erode established confidence.
	recomputed := m.confidenceFor(next.EvidenceCount)
	if confidenceRank(recomputed) > confidenceRank(prior.Confidence) {
		next.Confidence = recomputed
	} else {
		next.Confidence = prior.Confidence
	}

	return FactUpsert{Op: OpUpdate, Fact: next}, true
}

// groupCandidates buckets candidates by identity, preserving first-seen
// order for deterministic output.
func groupCandidates(candidates []CandidateFact) (map[FactKey][]CandidateFact, []FactKey) {
	groups := make(map[FactKey][]CandidateFact)
	var order []FactKey
	for _, c := range candidates {
		key := FactKey{Category: c.Category, Key: c.Key}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}
	return groups, order
}

// distinctIDs returns the supporting IDs of a group, de-duplicated within
// the group and excluding any already in `seen`.
func distinctIDs(group []CandidateFact, seen map[string]bool) []string {
	var ids []string
	inGroup := make(map[string]bool, len(group))
	for _, c := range group {
		id := c.SupportingID
		if id == "" || inGroup[id] || seen[id] {
			continue
		}
		inGroup[id] = true
		ids = append(ids, id)
	}
	return ids
}
