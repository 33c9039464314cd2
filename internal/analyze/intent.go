package analyze

import "strings"

// intentRule is one step of the classification cascade. Rules are evaluated
// in order and the first match wins, so priority is explicit and each rule
// is testable in isolation.
type intentRule struct {
	name  string
	label Intent
	match func(text string, tokens []string) bool
}

// interrogatives are the leading words that mark a question even without a
// trailing question mark.
var interrogatives = map[string]bool{
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"whom": true, "whose": true, "why": true, "how": true,
}

// greetings and gratitude phrases classify as IntentOther: they carry no
// profile signal but shouldn't be mistaken for statements of fact.
var greetingTokens = map[string]bool{
	"hello": true, "hi": true, "hey": true, "greetings": true,
	"thanks": true, "thank": true, "thx": true,
}

func buildIntentRules(preferenceMarkers []string) []intentRule {
	markers := make([]string, 0, len(preferenceMarkers))
	for _, m := range preferenceMarkers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			markers = append(markers, m)
		}
	}

	return []intentRule{
		{
			name:  "question",
			label: IntentQuestion,
			match: func(text string, tokens []string) bool {
				if strings.HasSuffix(strings.TrimSpace(text), "?") {
					return true
				}
				return len(tokens) > 0 && interrogatives[tokens[0]]
			},
		},
		{
			name:  "preference",
			label: IntentPreference,
			match: func(text string, tokens []string) bool {
				lower := strings.ToLower(text)
				for _, m := range markers {
					if strings.Contains(lower, m) {
						return true
					}
				}
				return false
			},
		},
		{
			name:  "other",
			label: IntentOther,
			match: func(text string, tokens []string) bool {
				if len(tokens) == 0 {
					return false
				}
				return greetingTokens[tokens[0]]
			},
		},
		{
			name:  "statement",
			label: IntentStatement,
			match: func(string, []string) bool { return true },
		},
	}
}

// classifyIntent walks the cascade; the final statement rule always matches,
// so there is no fallthrough ambiguity.
func (a *Analyzer) classifyIntent(text string, tokens []string) Intent {
	for _, rule := range a.intentRules {
		if rule.match(text, tokens) {
			return rule.label
		}
	}
	return IntentStatement
}
