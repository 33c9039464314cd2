package learn

import (
	"fmt"

	"github.com/hurttlocker/persona/internal/analyze"
	"github.com/hurttlocker/persona/internal/pattern"
)

// Insight is a derived, non-persisted observation about a user, returned
// alongside fact upserts for the analytics surface. Unlike facts, insights
// carry no evidence ledger — they are recomputed every cycle.
type Insight struct {
	Category   string   `json:"category"`
	Insight    string   `json:"insight"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

const (
	engagedInteractionFloor = 10
	positiveSentimentFloor  = 0.1
	questionCountFloor      = 3
	recentWindow            = 10
)

// generateInsights derives coarse observations from the analyzed history.
// Each rule is independent; zero insights is a normal outcome.
func generateInsights(obs []pattern.Observation, intents []analyze.Intent) []Insight {
	var insights []Insight

	if len(obs) > engagedInteractionFloor {
		insights = append(insights, Insight{
			Category:   "engagement",
			Insight:    "User is highly engaged with frequent interactions",
			Confidence: 0.8,
			Evidence:   []string{fmt.Sprintf("%d interactions recorded", len(obs))},
		})
	}

	recent := obs
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	if len(recent) > 0 {
		var sum float64
		for _, o := range recent {
			sum += o.Sentiment
		}
		if avg := sum / float64(len(recent)); avg > positiveSentimentFloor {
			insights = append(insights, Insight{
				Category:   "communication",
				Insight:    "User generally communicates with positive sentiment",
				Confidence: 0.7,
				Evidence:   []string{fmt.Sprintf("recent average sentiment %.2f", avg)},
			})
		}
	}

	questions := 0
	for _, intent := range intents {
		if intent == analyze.IntentQuestion {
			questions++
		}
	}
	if questions > questionCountFloor {
		insights = append(insights, Insight{
			Category:   "learning",
			Insight:    "User prefers learning through asking questions",
			Confidence: 0.6,
			Evidence:   []string{fmt.Sprintf("%d questions asked", questions)},
		})
	}

	return insights
}
