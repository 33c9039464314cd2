package analyze

import "strings"

// styleIndicators marks communication tone: each indicator found in the
// text adds one hit to its style, normalized by token count. These are
// descriptive signals for the analytics surface, not part of fact
// synthesis, so they stay a fixed table rather than injected config.
var styleIndicators = map[string][]string{
	"formal":    {"please", "thank you", "could you", "would you", "kindly", "regards"},
	"casual":    {"hey", "hi", "cool", "yeah", "nah", "gonna", "wanna", "sup"},
	"technical": {"algorithm", "function", "variable", "database", "api", "framework", "code", "server"},
	"friendly":  {"thanks", "appreciate", "great", "wonderful", "excited", "amazing", "!"},
}

// StyleScores returns per-style indicator densities for one text: hits per
// token, in [0, 1] for any realistic input. Blank text returns an empty map.
func StyleScores(text string) map[string]float64 {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return map[string]float64{}
	}

	lower := strings.ToLower(text)
	scores := make(map[string]float64, len(styleIndicators))
	for style, indicators := range styleIndicators {
		hits := 0
		for _, ind := range indicators {
			if strings.Contains(lower, ind) {
				hits++
			}
		}
		scores[style] = float64(hits) / float64(len(tokens))
	}
	return scores
}
