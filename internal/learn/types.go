// Package learn converts analyzed interactions into durable, evidence-backed
// facts about a user.
//
// The Synthesizer proposes candidate facts from one interaction's analysis
// plus the latest behavioral summary; the Merger reconciles candidates
// against the user's existing fact set, incrementing evidence instead of
// duplicating. Both are pure functions over caller-supplied values — the
// package performs no I/O and holds no shared state.
package learn

import "time"

// Interaction is one recorded user message. Immutable once recorded; the
// engine references it for analysis but never mutates it.
type Interaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Text       string    `json:"text"`
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"interaction_type"`
}

// Category classifies what a fact says about the user.
type Category string

const (
	CategoryPreference Category = "preference"
	CategoryInterest   Category = "interest"
	CategoryBehavior   Category = "behavior"
	CategoryTemporal   Category = "temporal"
)

// Confidence is the coarse trust tier derived purely from evidence count.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// confidenceRank orders tiers so merges can enforce monotonicity.
func confidenceRank(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	default:
		return 1
	}
}

// FactKey is a fact's identity within one user's profile: at most one fact
// exists per (category, key).
type FactKey struct {
	Category Category
	Key      string
}

// LearnedFact is a durable statement about a user. Evidence holds the IDs
// of the distinct interactions supporting it; EvidenceCount equals
// len(Evidence) under normal operation and is what confidence derives from.
// Facts are never deleted by the engine — erasure belongs to the store.
type LearnedFact struct {
	UserID        string     `json:"user_id"`
	Category      Category   `json:"category"`
	Key           string     `json:"key"`
	Value         string     `json:"value"`
	Confidence    Confidence `json:"confidence"`
	EvidenceCount int        `json:"evidence_count"`
	Evidence      []string   `json:"evidence,omitempty"`
	FirstSeen     time.Time  `json:"first_seen"`
	LastUpdated   time.Time  `json:"last_updated"`
}

// FactKey returns the fact's identity tuple.
func (f *LearnedFact) FactKey() FactKey {
	return FactKey{Category: f.Category, Key: f.Key}
}

// CandidateFact is a transient fact proposal, produced by the Synthesizer
// and consumed by the Merger.
type CandidateFact struct {
	Category     Category
	Key          string
	Value        string
	SupportingID string
}

// UpsertOp distinguishes the two outcomes of a merge.
type UpsertOp string

const (
	OpInsert UpsertOp = "insert"
	OpUpdate UpsertOp = "update"
)

// FactUpsert is one store mutation produced by the Merger. Fact carries the
// full post-merge state, including the merged evidence ID set.
type FactUpsert struct {
	Op   UpsertOp    `json:"op"`
	Fact LearnedFact `json:"fact"`
}
