// Package journey defines the learning-journey data model and the
// session store. A Journey is one learner's stateful traversal of a
// topic; it is owned by the store and mutated only through it.
package journey

import (
	"math"
	"time"

	"stepquest/internal/ageband"
)

// Status is the journey lifecycle state. Transitions are strictly
// forward: active → completed or active → abandoned, never back.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Provenance records how a step came to exist.
type Provenance string

const (
	// ProvenanceQuick marks the template-based first step served before
	// full-path generation resolves.
	ProvenanceQuick Provenance = "quick"

	// ProvenancePlanned marks steps from the background full-path generation.
	ProvenancePlanned Provenance = "planned"

	// ProvenanceOnDemand marks steps synthesized one at a time when the
	// full path never arrived.
	ProvenanceOnDemand Provenance = "on-demand"
)

// QuestionType classifies the question attached to a step.
type QuestionType string

const (
	QuestionFactual     QuestionType = "factual"
	QuestionSubjective  QuestionType = "subjective"
	QuestionApplication QuestionType = "application"
)

// Step is one unit of instructional content plus its question.
// Steps are append-only and never mutate once written.
type Step struct {
	StepNumber     int
	Title          string
	Content        string
	Question       string
	QuestionType   QuestionType
	Hints          []string
	ExpectedAnswer string
	Provenance     Provenance
}

// StudentResponse is one graded answer. Append-only.
type StudentResponse struct {
	StepNumber int
	Question   string
	Answer     string
	Feedback   string
	Score      int // 0-100
	Timestamp  time.Time
}

// Journey is one learner's session.
type Journey struct {
	// ID distinguishes journeys started for the same thread: restarting
	// a thread makes a new Journey and orphaned background generation
	// for the old one must not touch it.
	ID string

	ThreadID string
	Topic    string
	AgeGroup ageband.Band
	Title    string

	// Steps and FullPathReady are replaced together by the background
	// path generation; always read them from the same snapshot.
	Steps         []Step
	FullPathReady bool

	CurrentStepIndex int
	Status           Status

	CreatedAt     time.Time
	CompletedAt   time.Time
	AbandonedAt   time.Time
	AbandonReason string

	Responses  []StudentResponse
	NudgeCount int

	// CompletionMessage and PracticeQuestions arrive with the full path
	// and are surfaced in the completion payload.
	CompletionMessage string
	PracticeQuestions []string
}

// CurrentStep returns the step at CurrentStepIndex, or nil when the
// index is past the end of the generated steps.
func (j *Journey) CurrentStep() *Step {
	if j.CurrentStepIndex < 0 || j.CurrentStepIndex >= len(j.Steps) {
		return nil
	}
	return &j.Steps[j.CurrentStepIndex]
}

// CompletionPercent is the share of steps reached, rounded to the
// nearest whole percent. 2 of 4 steps → 50.
func (j *Journey) CompletionPercent() int {
	if len(j.Steps) == 0 {
		return 0
	}
	pct := float64(j.CurrentStepIndex) / float64(len(j.Steps)) * 100
	if pct > 100 {
		pct = 100
	}
	return int(math.Round(pct))
}

// AverageScore is the mean response score, 0 when nothing was answered.
func (j *Journey) AverageScore() float64 {
	if len(j.Responses) == 0 {
		return 0
	}
	total := 0
	for _, r := range j.Responses {
		total += r.Score
	}
	return float64(total) / float64(len(j.Responses))
}

// Duration is the elapsed time from creation to completion/abandonment,
// or to now for an active journey.
func (j *Journey) Duration() time.Duration {
	switch j.Status {
	case StatusCompleted:
		return j.CompletedAt.Sub(j.CreatedAt)
	case StatusAbandoned:
		return j.AbandonedAt.Sub(j.CreatedAt)
	default:
		return time.Since(j.CreatedAt)
	}
}

// Clone returns a deep copy. Store reads hand out clones so callers can
// never observe a torn background update.
func (j *Journey) Clone() *Journey {
	cp := *j
	cp.Steps = make([]Step, len(j.Steps))
	copy(cp.Steps, j.Steps)
	for i := range cp.Steps {
		if len(j.Steps[i].Hints) > 0 {
			cp.Steps[i].Hints = append([]string(nil), j.Steps[i].Hints...)
		}
	}
	cp.Responses = append([]StudentResponse(nil), j.Responses...)
	cp.PracticeQuestions = append([]string(nil), j.PracticeQuestions...)
	return &cp
}

// LastResponses returns up to n most recent responses, oldest first.
func (j *Journey) LastResponses(n int) []StudentResponse {
	if n <= 0 || len(j.Responses) == 0 {
		return nil
	}
	if len(j.Responses) < n {
		n = len(j.Responses)
	}
	return j.Responses[len(j.Responses)-n:]
}
