package progression

import (
	"stepquest/internal/journey"
	"stepquest/internal/report"
)

// ResultType tags operation outcomes for the hosting layer.
type ResultType string

const (
	ResultNudge         ResultType = "nudge"
	ResultFeedback      ResultType = "feedback"
	ResultAbandonOption ResultType = "abandon_option"
	ResultNextStep      ResultType = "next_step"
	ResultCompletion    ResultType = "completion"
	ResultAbandoned     ResultType = "abandoned"
)

// StepView is the read model for one step in its journey context.
type StepView struct {
	StepNumber int
	Title      string
	Content    string
	Question   string
	TotalSteps int
	Progress   int // 0-100
}

// SubmitResult is the outcome of one submitted answer.
//
// Type is "nudge" or "abandon_option" for off-topic answers and
// "feedback" for graded ones; Score/IsCorrect/CanProceed are only
// meaningful for feedback results.
type SubmitResult struct {
	Type       ResultType
	Message    string
	NudgeCount int
	CanAbandon bool
	Score      int
	IsCorrect  bool
	CanProceed bool
}

// CompletionPayload is everything handed to the learner when the final
// step is passed.
type CompletionPayload struct {
	Title             string
	Message           string
	PracticeQuestions []string
	Summary           report.Summary
	FollowUpTopics    []report.Topic
}

// AdvanceResult is either the next step or the completion payload,
// never both.
type AdvanceResult struct {
	Type       ResultType
	Step       *StepView
	Completion *CompletionPayload
}

// AbandonResult summarizes how far the learner got before giving up.
type AbandonResult struct {
	Type              ResultType
	CompletionPercent int
	StepsCompleted    int
}

// StatusView is the read model for a journey's overall state.
type StatusView struct {
	Status      journey.Status
	CurrentStep int // 1-based
	TotalSteps  int
	Topic       string
	Progress    int // 0-100
}

// SummaryPayload bundles the heuristic summary with model-suggested
// follow-up topics. Topics are only populated for completed journeys.
type SummaryPayload struct {
	Summary        report.Summary
	FollowUpTopics []report.Topic
}
