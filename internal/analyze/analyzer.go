// Package analyze provides deterministic, rule-based text analysis for the
// persona learning engine.
//
// A single interaction's text is scored without any trained model or
// external API:
// - Sentiment from a positive/negative lexicon with simple negation handling
// - Topics from a curated keyword dictionary plus informative-token fallback
// - Intent from an ordered rule cascade (question, preference, other, statement)
//
// Analyze is a pure function of its input: identical text always produces
// an identical Result, so callers may cache results safely.
package analyze

import (
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/hurttlocker/persona/internal/config"
)

// ErrInvalidInput is returned when text is empty or whitespace-only.
// Callers are expected to filter blank content before analysis.
var ErrInvalidInput = errors.New("analyze: text is empty or blank")

// Intent is the coarse communicative category of one interaction.
type Intent string

const (
	IntentStatement  Intent = "statement"
	IntentQuestion   Intent = "question"
	IntentPreference Intent = "preference"
	IntentOther      Intent = "other"
)

// Result holds the analysis of one interaction's text.
type Result struct {
	// Sentiment is in [-1, 1]: (positive hits - negative hits) over total
	// sentiment hits.
	Sentiment float64

	// Topics is a sorted, de-duplicated set of canonical topics and
	// informative raw tokens.
	Topics []string

	Intent Intent
}

// Analyzer scores text against injected lexicons. It holds no mutable
// state and is safe for concurrent use.
type Analyzer struct {
	stopwords      map[string]bool
	positive       map[string]bool
	negative       map[string]bool
	negations      map[string]bool
	negationWindow int
	topics         map[string]string
	intentRules    []intentRule
}

// New builds an Analyzer from a validated config.
func New(cfg config.Config) *Analyzer {
	a := &Analyzer{
		stopwords:      toSet(cfg.Stopwords),
		positive:       toSet(cfg.Sentiment.Positive),
		negative:       toSet(cfg.Sentiment.Negative),
		negations:      toSet(cfg.Sentiment.Negations),
		negationWindow: cfg.NegationWindow,
		topics:         lowerKeys(cfg.TopicDictionary),
	}
	a.intentRules = buildIntentRules(cfg.PreferenceMarkers)
	return a
}

// Analyze scores one interaction's text. It fails with ErrInvalidInput on
// empty or whitespace-only text; every other input degrades gracefully
// (no topics, neutral sentiment) rather than failing.
func (a *Analyzer) Analyze(text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrInvalidInput
	}

	tokens := Tokenize(text)

	return Result{
		Sentiment: a.sentiment(tokens),
		Topics:    a.extractTopics(tokens),
		Intent:    a.classifyIntent(text, tokens),
	}, nil
}

// sentiment scores tokens against the lexicon: (pos - neg) / max(1, hits),
// clamped to [-1, 1]. A negation token within the negation window before a
// sentiment word flips that hit's polarity.
func (a *Analyzer) sentiment(tokens []string) float64 {
	var pos, neg int
	for i, tok := range tokens {
		isPos := a.positive[tok]
		isNeg := a.negative[tok]
		if !isPos && !isNeg {
			continue
		}
		if a.negatedAt(tokens, i) {
			isPos, isNeg = isNeg, isPos
		}
		if isPos {
			pos++
		} else {
			neg++
		}
	}

	hits := pos + neg
	if hits < 1 {
		hits = 1
	}
	score := float64(pos-neg) / float64(hits)

	// Clamp against rounding drift; the formula is already bounded.
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// negatedAt reports whether a negation token sits within the window before
// tokens[i].
func (a *Analyzer) negatedAt(tokens []string, i int) bool {
	for back := 1; back <= a.negationWindow && i-back >= 0; back++ {
		if a.negations[tokens[i-back]] {
			return true
		}
	}
	return false
}

// extractTopics matches informative tokens and bigrams against the topic
// dictionary. A dictionary hit contributes its canonical topic plus the
// matched token itself; unmatched informative tokens (length > 2, not
// stopwords, not sentiment words) are kept as raw topic candidates.
func (a *Analyzer) extractTopics(tokens []string) []string {
	informative := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if a.stopwords[tok] {
			continue
		}
		informative = append(informative, tok)
	}

	set := make(map[string]bool)

	for i, tok := range informative {
		if canon, ok := a.topics[tok]; ok {
			set[canon] = true
			set[tok] = true
			continue
		}
		if i+1 < len(informative) {
			bigram := tok + " " + informative[i+1]
			if canon, ok := a.topics[bigram]; ok {
				set[canon] = true
				continue
			}
		}
		if len(tok) > 2 && !a.positive[tok] && !a.negative[tok] && !a.negations[tok] {
			set[tok] = true
		}
	}

	topics := make([]string, 0, len(set))
	for t := range set {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Tokenize lowercases text and splits it into word tokens. Punctuation is
// stripped except apostrophes inside a word ("don't" stays one token), so
// negation contractions survive.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := strings.Trim(cur.String(), "'’")
		if tok != "" {
			tokens = append(tokens, tok)
		}
		cur.Reset()
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		case r == '\'' || r == '’':
			cur.WriteRune('\'')
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = true
	}
	delete(set, "")
	return set
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	delete(out, "")
	return out
}
