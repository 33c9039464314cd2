// Package config holds the tunable knobs and word lists for the persona
// learning engine.
//
// Everything the engine consults — confidence thresholds, stopwords, the
// sentiment lexicon, the topic dictionary — is plain configuration data
// injected at construction, never hidden package state. Default() returns
// the built-in English lists; Load() overlays a YAML file on top of them so
// deployments can retune the engine without code changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks a configuration that fails validation. The engine
// refuses to construct with such a config; nothing is checked again at call
// time.
var ErrInvalidConfig = errors.New("invalid config")

// ConfidenceThresholds map evidence counts to confidence tiers.
// evidence_count <= LowMax is low, <= MediumMax is medium, above is high.
type ConfidenceThresholds struct {
	LowMax    int `yaml:"low_max"`
	MediumMax int `yaml:"medium_max"`
}

// SentimentLexicon holds the word sets for lexicon-based sentiment scoring.
// Positive and Negative must be disjoint; Negations flip the polarity of a
// sentiment word they precede within the negation window.
type SentimentLexicon struct {
	Positive  []string `yaml:"positive"`
	Negative  []string `yaml:"negative"`
	Negations []string `yaml:"negations"`
}

// Config is the full engine configuration. All thresholds are overridable
// from a YAML file; lists replace the defaults wholesale when present.
type Config struct {
	// MinInteractions is the minimum history size (including the new
	// interaction) before facts are synthesized. Below it the engine still
	// returns a pattern summary but no upserts.
	MinInteractions int `yaml:"min_interactions_for_learning"`

	Confidence ConfidenceThresholds `yaml:"confidence_thresholds"`

	// BriefTokenThreshold: mean tokens per interaction below this makes the
	// dominant style "brief", otherwise "detailed".
	BriefTokenThreshold int `yaml:"brief_token_threshold"`

	// TrendEpsilon is the minimum mean-sentiment delta between the earliest
	// and most recent thirds of history before a trend is reported.
	TrendEpsilon float64 `yaml:"trend_epsilon"`

	// NegationWindow is how many tokens back a negation can sit and still
	// flip a sentiment word.
	NegationWindow int `yaml:"negation_window"`

	Stopwords []string         `yaml:"stopword_list"`
	Sentiment SentimentLexicon `yaml:"sentiment_lexicon"`

	// TopicDictionary maps curated keywords (tokens or space-joined bigrams)
	// to a canonical topic, e.g. "guitar" -> "music".
	TopicDictionary map[string]string `yaml:"topic_dictionary"`

	// GenericTopics are topics too broad to become interest facts on their
	// own (umbrella categories and conversational filler). The analyzer
	// still reports them; the synthesizer skips them.
	GenericTopics []string `yaml:"generic_topics"`

	// PreferenceMarkers are the first-person phrases that classify an
	// interaction's intent as a preference expression.
	PreferenceMarkers []string `yaml:"preference_markers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MinInteractions:     1,
		Confidence:          ConfidenceThresholds{LowMax: 2, MediumMax: 4},
		BriefTokenThreshold: 15,
		TrendEpsilon:        0.15,
		NegationWindow:      2,
		Stopwords:           defaultStopwords(),
		Sentiment: SentimentLexicon{
			Positive:  defaultPositiveWords(),
			Negative:  defaultNegativeWords(),
			Negations: defaultNegations(),
		},
		TopicDictionary:   defaultTopicDictionary(),
		GenericTopics:     defaultGenericTopics(),
		PreferenceMarkers: defaultPreferenceMarkers(),
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".persona", "config.yaml")
}

// Load reads a YAML config file and overlays it on Default(). A missing
// file is not an error — the defaults are returned as-is. The result is
// validated before being returned.
func Load(path string) (Config, error) {
	cfg := Default()

	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate fails fast on malformed thresholds so errors surface at engine
// construction, never mid-call.
func (c Config) Validate() error {
	if c.MinInteractions < 1 {
		return fmt.Errorf("%w: min_interactions_for_learning must be >= 1, got %d", ErrInvalidConfig, c.MinInteractions)
	}
	if c.Confidence.LowMax < 1 {
		return fmt.Errorf("%w: confidence_thresholds.low_max must be >= 1, got %d", ErrInvalidConfig, c.Confidence.LowMax)
	}
	if c.Confidence.MediumMax < c.Confidence.LowMax {
		return fmt.Errorf("%w: confidence_thresholds.medium_max (%d) must be >= low_max (%d)",
			ErrInvalidConfig, c.Confidence.MediumMax, c.Confidence.LowMax)
	}
	if c.BriefTokenThreshold < 1 {
		return fmt.Errorf("%w: brief_token_threshold must be >= 1, got %d", ErrInvalidConfig, c.BriefTokenThreshold)
	}
	if c.TrendEpsilon < 0 {
		return fmt.Errorf("%w: trend_epsilon must be >= 0, got %g", ErrInvalidConfig, c.TrendEpsilon)
	}
	if c.NegationWindow < 0 {
		return fmt.Errorf("%w: negation_window must be >= 0, got %d", ErrInvalidConfig, c.NegationWindow)
	}
	if overlap := firstOverlap(c.Sentiment.Positive, c.Sentiment.Negative); overlap != "" {
		return fmt.Errorf("%w: sentiment lexicon lists %q as both positive and negative", ErrInvalidConfig, overlap)
	}
	return nil
}

func firstOverlap(a, b []string) string {
	seen := make(map[string]bool, len(a))
	for _, w := range a {
		seen[strings.ToLower(w)] = true
	}
	for _, w := range b {
		if seen[strings.ToLower(w)] {
			return strings.ToLower(w)
		}
	}
	return ""
}
