package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero min interactions", func(c *Config) { c.MinInteractions = 0 }},
		{"zero low max", func(c *Config) { c.Confidence.LowMax = 0 }},
		{"medium below low", func(c *Config) { c.Confidence.MediumMax = c.Confidence.LowMax - 1 }},
		{"zero brief threshold", func(c *Config) { c.BriefTokenThreshold = 0 }},
		{"negative trend epsilon", func(c *Config) { c.TrendEpsilon = -0.1 }},
		{"negative negation window", func(c *Config) { c.NegationWindow = -1 }},
		{"lexicon overlap", func(c *Config) {
			c.Sentiment.Positive = append(c.Sentiment.Positive, "meh")
			c.Sentiment.Negative = append(c.Sentiment.Negative, "meh")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinInteractions != Default().MinInteractions {
		t.Errorf("MinInteractions = %d, want default", cfg.MinInteractions)
	}
	if len(cfg.Stopwords) == 0 {
		t.Error("default stopwords missing")
	}
}

func TestLoad_OverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
min_interactions_for_learning: 3
confidence_thresholds:
  low_max: 1
  medium_max: 6
trend_epsilon: 0.25
preference_markers:
  - "i'm into"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinInteractions != 3 {
		t.Errorf("MinInteractions = %d, want 3", cfg.MinInteractions)
	}
	if cfg.Confidence.LowMax != 1 || cfg.Confidence.MediumMax != 6 {
		t.Errorf("Confidence = %+v, want {1 6}", cfg.Confidence)
	}
	if cfg.TrendEpsilon != 0.25 {
		t.Errorf("TrendEpsilon = %v, want 0.25", cfg.TrendEpsilon)
	}
	if len(cfg.PreferenceMarkers) != 1 || cfg.PreferenceMarkers[0] != "i'm into" {
		t.Errorf("PreferenceMarkers = %v, want replaced wholesale", cfg.PreferenceMarkers)
	}

	// Fields the file omits keep their defaults.
	if cfg.BriefTokenThreshold != Default().BriefTokenThreshold {
		t.Errorf("BriefTokenThreshold = %d, want default", cfg.BriefTokenThreshold)
	}
	if len(cfg.TopicDictionary) == 0 {
		t.Error("default topic dictionary missing")
	}
}

func TestLoad_InvalidOverlayFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "confidence_thresholds:\n  low_max: 5\n  medium_max: 2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want parse error")
	}
}
