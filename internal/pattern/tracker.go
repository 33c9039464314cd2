// Package pattern derives behavioral summaries from a user's interaction
// history.
//
// A Summary is recomputed from the full history on every learning cycle
// rather than mutated incrementally; determinism matters more here than the
// constant factor, and histories are per-user and small.
package pattern

import (
	"errors"
	"sort"
	"time"

	"github.com/hurttlocker/persona/internal/config"
)

// ErrInsufficientData signals an empty history. It is a soft signal — "no
// pattern yet" — not a failure to surface to end users.
var ErrInsufficientData = errors.New("pattern: no interactions to summarize")

// Style is the dominant message style: brief or detailed.
type Style string

const (
	StyleBrief    Style = "brief"
	StyleDetailed Style = "detailed"
)

// Trend is the direction of sentiment over the history.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Observation is one analyzed interaction, reduced to the fields the
// tracker needs. Histories are ordered most-recent-last.
type Observation struct {
	OccurredAt time.Time
	Sentiment  float64
	TokenCount int
	Topics     []string
}

// TopicCount is one entry of a topic frequency ranking.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Summary is the derived behavioral snapshot for one user. It is owned by
// the engine for the duration of one learning call; collaborators may cache
// the latest snapshot per user.
type Summary struct {
	Interactions   int         `json:"interactions"`
	AvgSentiment   float64     `json:"avg_sentiment"`
	ActiveHours    map[int]int `json:"active_hours"`
	DominantStyle  Style       `json:"dominant_style"`
	SentimentTrend Trend       `json:"sentiment_trend"`

	// Cadence and content statistics.
	AvgTokens   float64      `json:"avg_tokens"`
	AvgGapHours float64      `json:"avg_gap_hours"`
	SpanDays    int          `json:"span_days"`
	TopTopics   []TopicCount `json:"top_topics,omitempty"`
}

// topTopicLimit caps the topic ranking kept on a summary.
const topTopicLimit = 10

// Tracker computes summaries using the configured thresholds.
type Tracker struct {
	briefTokenThreshold int
	trendEpsilon        float64
}

// New builds a Tracker from a validated config.
func New(cfg config.Config) *Tracker {
	return &Tracker{
		briefTokenThreshold: cfg.BriefTokenThreshold,
		trendEpsilon:        cfg.TrendEpsilon,
	}
}

// Summarize reduces an ordered history (most-recent-last) to a Summary.
// An empty history returns ErrInsufficientData; one or more observations
// always succeed, with fields degrading gracefully (trend stays stable
// below three points).
func (t *Tracker) Summarize(history []Observation) (*Summary, error) {
	if len(history) == 0 {
		return nil, ErrInsufficientData
	}

	s := &Summary{
		Interactions: len(history),
		ActiveHours:  make(map[int]int),
	}

	var sentimentSum float64
	var tokenSum int
	topicCounts := make(map[string]int)

	for _, obs := range history {
		sentimentSum += obs.Sentiment
		tokenSum += obs.TokenCount
		// Hour-of-day in the timestamp's own location; the caller decides
		// what "local" means when recording interactions.
		s.ActiveHours[obs.OccurredAt.Hour()]++
		for _, topic := range obs.Topics {
			topicCounts[topic]++
		}
	}

	n := float64(len(history))
	s.AvgSentiment = sentimentSum / n
	s.AvgTokens = float64(tokenSum) / n

	if s.AvgTokens < float64(t.briefTokenThreshold) {
		s.DominantStyle = StyleBrief
	} else {
		s.DominantStyle = StyleDetailed
	}

	s.SentimentTrend = t.trend(history)
	s.AvgGapHours = avgGapHours(history)
	s.SpanDays = spanDays(history)
	s.TopTopics = rankTopics(topicCounts)

	return s, nil
}

// trend compares the mean sentiment of the most recent third of history
// against the earliest third. Thirds are max(1, n/3) observations; fewer
// than three points is always stable.
func (t *Tracker) trend(history []Observation) Trend {
	n := len(history)
	if n < 3 {
		return TrendStable
	}

	third := n / 3
	if third < 1 {
		third = 1
	}

	earliest := meanSentiment(history[:third])
	recent := meanSentiment(history[n-third:])

	switch {
	case recent > earliest+t.trendEpsilon:
		return TrendImproving
	case recent < earliest-t.trendEpsilon:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// ModeHour returns the hour with the highest interaction count. Ties break
// to the lowest hour number; an empty histogram returns -1.
func (s *Summary) ModeHour() int {
	best, bestCount := -1, 0
	for hour := 0; hour < 24; hour++ {
		if c := s.ActiveHours[hour]; c > bestCount {
			best, bestCount = hour, c
		}
	}
	return best
}

func meanSentiment(obs []Observation) float64 {
	var sum float64
	for _, o := range obs {
		sum += o.Sentiment
	}
	return sum / float64(len(obs))
}

func avgGapHours(history []Observation) float64 {
	if len(history) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(history); i++ {
		total += history[i].OccurredAt.Sub(history[i-1].OccurredAt).Hours()
	}
	return total / float64(len(history)-1)
}

func spanDays(history []Observation) int {
	if len(history) < 2 {
		return 0
	}
	span := history[len(history)-1].OccurredAt.Sub(history[0].OccurredAt)
	return int(span.Hours() / 24)
}

// rankTopics sorts topic counts descending, topic name ascending on ties,
// capped at topTopicLimit.
func rankTopics(counts map[string]int) []TopicCount {
	if len(counts) == 0 {
		return nil
	}
	ranked := make([]TopicCount, 0, len(counts))
	for topic, count := range counts {
		ranked = append(ranked, TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Topic < ranked[j].Topic
	})
	if len(ranked) > topTopicLimit {
		ranked = ranked[:topTopicLimit]
	}
	return ranked
}
