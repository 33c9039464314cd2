package learn

import (
	"fmt"
	"strings"

	"github.com/hurttlocker/persona/internal/analyze"
	"github.com/hurttlocker/persona/internal/config"
	"github.com/hurttlocker/persona/internal/pattern"
)

// maxPreferenceKeyTokens caps how many tokens of the preference object make
// it into the fact key. The value keeps the full clause.
const maxPreferenceKeyTokens = 4

// Synthesizer turns one interaction's analysis plus the latest pattern
// summary into candidate facts. All rules are independent; an interaction
// can yield zero, one, or several candidates.
type Synthesizer struct {
	generic   map[string]bool
	stopwords map[string]bool
	markers   []string
}

// NewSynthesizer builds a Synthesizer from a validated config.
func NewSynthesizer(cfg config.Config) *Synthesizer {
	markers := make([]string, 0, len(cfg.PreferenceMarkers))
	for _, m := range cfg.PreferenceMarkers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			markers = append(markers, m)
		}
	}
	return &Synthesizer{
		generic:   toSet(cfg.GenericTopics),
		stopwords: toSet(cfg.Stopwords),
		markers:   markers,
	}
}

// Synthesize proposes candidate facts for one interaction. Per-interaction
// candidates (interests, preferences) come from the analysis; behavior and
// temporal candidates come from the latest summary and are re-emitted every
// cycle so they track current aggregate behavior.
func (s *Synthesizer) Synthesize(res analyze.Result, sum *pattern.Summary, in Interaction) []CandidateFact {
	var candidates []CandidateFact

	for _, topic := range res.Topics {
		if s.generic[topic] {
			continue
		}
		candidates = append(candidates, CandidateFact{
			Category:     CategoryInterest,
			Key:          "interest_" + topic,
			Value:        interestValue(topic, res.Sentiment),
			SupportingID: in.ID,
		})
	}

	if res.Intent == analyze.IntentPreference {
		if c, ok := s.preferenceCandidate(in); ok {
			candidates = append(candidates, c)
		}
	}

	candidates = append(candidates, s.summaryCandidates(sum, in)...)
	return candidates
}

// interestValue renders a readable sentence for the topic, keyed to the
// interaction's sentiment polarity.
func interestValue(topic string, sentiment float64) string {
	switch {
	case sentiment > 0:
		return fmt.Sprintf("Shows interest in %s", topic)
	case sentiment < 0:
		return fmt.Sprintf("Reacts negatively to %s", topic)
	default:
		return fmt.Sprintf("Mentions %s", topic)
	}
}

// preferenceCandidate extracts the preference object: the longest
// informative token sequence following the earliest preference marker, up
// to the end of the sentence.
func (s *Synthesizer) preferenceCandidate(in Interaction) (CandidateFact, bool) {
	lower := strings.ToLower(in.Text)

	markerIdx, markerLen := -1, 0
	var marker string
	for _, m := range s.markers {
		if idx := strings.Index(lower, m); idx >= 0 && (markerIdx < 0 || idx < markerIdx) {
			markerIdx, markerLen, marker = idx, len(m), m
		}
	}
	if markerIdx < 0 {
		return CandidateFact{}, false
	}

	clause := lower[markerIdx+markerLen:]
	if cut := strings.IndexAny(clause, ".!?"); cut >= 0 {
		clause = clause[:cut]
	}
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return CandidateFact{}, false
	}

	keyTokens := make([]string, 0, maxPreferenceKeyTokens)
	for _, tok := range analyze.Tokenize(clause) {
		if s.stopwords[tok] || len(tok) <= 2 {
			continue
		}
		keyTokens = append(keyTokens, tok)
		if len(keyTokens) == maxPreferenceKeyTokens {
			break
		}
	}
	if len(keyTokens) == 0 {
		return CandidateFact{}, false
	}

	return CandidateFact{
		Category:     CategoryPreference,
		Key:          "preference_" + strings.Join(keyTokens, "_"),
		Value:        preferenceValue(marker, clause),
		SupportingID: in.ID,
	}, true
}

// preferenceValue renders the preference as a readable sentence, preserving
// the marker's polarity.
func preferenceValue(marker, clause string) string {
	verb := "Likes"
	switch {
	case strings.HasSuffix(marker, "hate"), strings.HasSuffix(marker, "dislike"):
		verb = "Dislikes"
	case strings.HasSuffix(marker, "prefer"):
		verb = "Prefers"
	case strings.HasSuffix(marker, "enjoy"):
		verb = "Enjoys"
	}
	return fmt.Sprintf("%s %s", verb, clause)
}

// summaryCandidates derives behavior and temporal candidates from the
// latest PatternSummary. They are keyed by stable names so every learning
// cycle re-merges into the same facts.
func (s *Synthesizer) summaryCandidates(sum *pattern.Summary, in Interaction) []CandidateFact {
	if sum == nil {
		return nil
	}

	var candidates []CandidateFact

	if hour := sum.ModeHour(); hour >= 0 {
		candidates = append(candidates, CandidateFact{
			Category:     CategoryBehavior,
			Key:          "active_hour",
			Value:        fmt.Sprintf("Most active around %02d:00", hour),
			SupportingID: in.ID,
		})
	}

	if sum.DominantStyle != "" {
		candidates = append(candidates, CandidateFact{
			Category:     CategoryBehavior,
			Key:          "message_style",
			Value:        fmt.Sprintf("Prefers %s messages", sum.DominantStyle),
			SupportingID: in.ID,
		})
	}

	if sum.SentimentTrend != "" {
		candidates = append(candidates, CandidateFact{
			Category:     CategoryTemporal,
			Key:          "sentiment_trend",
			Value:        fmt.Sprintf("Sentiment over recent interactions is %s", sum.SentimentTrend),
			SupportingID: in.ID,
		})
	}

	return candidates
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = true
	}
	delete(set, "")
	return set
}
