package analyze

import (
	"testing"

	"github.com/hurttlocker/persona/internal/config"
)

func TestClassifyIntent_Cascade(t *testing.T) {
	a := New(config.Default())

	cases := []struct {
		text string
		want Intent
	}{
		// Rule 1: question — trailing "?" or leading interrogative.
		{"do you know any good jazz albums?", IntentQuestion},
		{"what should I practice next", IntentQuestion},
		{"how does this work", IntentQuestion},

		// Question outranks preference when both apply.
		{"why do I love jazz so much?", IntentQuestion},

		// Rule 2: preference — first-person markers.
		{"I love playing guitar and listening to jazz music!", IntentPreference},
		{"honestly I prefer tea over coffee", IntentPreference},
		{"I hate waiting in line", IntentPreference},
		{"I enjoy long walks", IntentPreference},

		// Rule 3: greetings and gratitude are "other".
		{"hello there", IntentOther},
		{"thanks a lot", IntentOther},

		// Preference outranks the greeting rule.
		{"thanks, I love it", IntentPreference},

		// Rule 4: fallback.
		{"the meeting moved to Tuesday", IntentStatement},
		{"guitar strings arrived yesterday", IntentStatement},
	}

	for _, tc := range cases {
		res, err := a.Analyze(tc.text)
		if err != nil {
			t.Fatalf("Analyze(%q) failed: %v", tc.text, err)
		}
		if res.Intent != tc.want {
			t.Errorf("Analyze(%q).Intent = %q, want %q", tc.text, res.Intent, tc.want)
		}
	}
}

func TestClassifyIntent_CustomMarkers(t *testing.T) {
	cfg := config.Default()
	cfg.PreferenceMarkers = []string{"i'm into"}
	a := New(cfg)

	res, err := a.Analyze("I'm into vintage synths")
	if err != nil {
		t.Fatal(err)
	}
	if res.Intent != IntentPreference {
		t.Errorf("Intent = %q, want preference with custom marker", res.Intent)
	}

	// The default markers are gone once overridden.
	res, err = a.Analyze("I love this")
	if err != nil {
		t.Fatal(err)
	}
	if res.Intent == IntentPreference {
		t.Error("default marker should not apply after override")
	}
}
