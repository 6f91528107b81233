// Package report produces end-of-journey summaries and deeper follow-up
// topic suggestions.
package report

import (
	"time"

	"stepquest/internal/journey"
)

// Summary is derived from the journey's response history; it is
// computed on demand and never stored.
type Summary struct {
	StepsCompleted int
	AverageScore   float64
	Duration       time.Duration
	Strengths      []string
	Achievements   []string
}

// Achievement and strength labels.
const (
	StrengthExcellent   = "excellent understanding"
	StrengthProblem     = "good problem solving"
	StrengthPersistence = "great persistence"
	StrengthCurious     = "curious learner"

	BadgeCompletion  = "journey complete"
	BadgePersistence = "persistent explorer"
	BadgeHighAverage = "star learner"
)

// persistenceResponses is the response count that earns the
// persistence strength and badge.
const persistenceResponses = 5

// highAverage is the average score that earns the high-average badge.
const highAverage = 85.0

// BuildSummary computes a Summary from the journey's history. Purely
// heuristic, no model call.
func BuildSummary(j *journey.Journey) Summary {
	avg := j.AverageScore()

	var strengths []string
	switch {
	case avg >= 80:
		strengths = append(strengths, StrengthExcellent)
	case avg >= 60:
		strengths = append(strengths, StrengthProblem)
	}
	if len(j.Responses) >= persistenceResponses {
		strengths = append(strengths, StrengthPersistence)
	}
	if len(strengths) == 0 {
		strengths = append(strengths, StrengthCurious)
	}

	var achievements []string
	if j.Status == journey.StatusCompleted {
		achievements = append(achievements, BadgeCompletion)
	}
	if len(j.Responses) >= persistenceResponses {
		achievements = append(achievements, BadgePersistence)
	}
	if avg >= highAverage && len(j.Responses) > 0 {
		achievements = append(achievements, BadgeHighAverage)
	}

	steps := j.CurrentStepIndex
	if steps > len(j.Steps) {
		steps = len(j.Steps)
	}

	return Summary{
		StepsCompleted: steps,
		AverageScore:   avg,
		Duration:       j.Duration(),
		Strengths:      strengths,
		Achievements:   achievements,
	}
}
