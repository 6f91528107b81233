// Package progression is the journey state machine. It owns every
// transition — quick start, answer grading, advancement, completion,
// abandonment — and is the only writer to the journey store besides
// the background path generation it launches itself.
//
// Operations on one thread ID are expected to be called sequentially;
// the store's per-entry locking only shields callers from the
// concurrent background path replace, not from racing each other.
package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stepquest/internal/ageband"
	"stepquest/internal/evaluate"
	"stepquest/internal/journey"
	"stepquest/internal/pathgen"
	"stepquest/internal/quiz"
	"stepquest/internal/report"
)

// Deps collects the controller's collaborators.
type Deps struct {
	Store     *journey.Store
	Paths     *pathgen.Service
	Evaluator *evaluate.Service
	FollowUps *report.Service
	Quizzes   *quiz.Service

	// Picker selects quick-start templates; nil gets a time-seeded one.
	Picker TemplatePicker
	// Logger is optional; background generation failures land here.
	Logger *zap.Logger
}

// Controller orchestrates learning journeys end to end.
type Controller struct {
	store   *journey.Store
	paths   *pathgen.Service
	eval    *evaluate.Service
	follow  *report.Service
	quizzes *quiz.Service
	picker  TemplatePicker
	logger  *zap.Logger
}

// NewController wires a controller from its dependencies.
func NewController(d Deps) *Controller {
	if d.Picker == nil {
		d.Picker = NewSeededPicker(time.Now().UnixNano())
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Controller{
		store:   d.Store,
		paths:   d.Paths,
		eval:    d.Evaluator,
		follow:  d.FollowUps,
		quizzes: d.Quizzes,
		picker:  d.Picker,
		logger:  d.Logger,
	}
}

// Start creates an active journey with one template step and returns a
// snapshot immediately. Full-path generation runs in the background;
// its failure is logged, never surfaced here. Starting an existing
// thread replaces its journey with a fresh one.
func (c *Controller) Start(ctx context.Context, threadID, topic string, band ageband.Band) (*journey.Journey, error) {
	if threadID == "" {
		return nil, &journey.UsageError{Op: "start", Reason: "empty thread id"}
	}
	if topic == "" {
		return nil, &journey.UsageError{Op: "start", Reason: "empty topic"}
	}
	if !ageband.Known(band) {
		band = ageband.DefaultBand
	}

	j := &journey.Journey{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Topic:     topic,
		AgeGroup:  band,
		Title:     fmt.Sprintf("Exploring %s", topic),
		Steps:     []journey.Step{quickStep(topic, band, c.picker)},
		Status:    journey.StatusActive,
		CreatedAt: time.Now(),
	}
	// Clone before the generation goroutine exists: once it is
	// launched, j may only be touched through the store's entry lock.
	snap := j.Clone()
	c.store.Put(j)

	// Detach from the request context: the path must keep generating
	// after the caller's request returns.
	go c.generateFullPath(context.WithoutCancel(ctx), j.ID, threadID, topic, band)

	return snap, nil
}

// generateFullPath runs the one big curriculum call and swaps the
// steps in as a single atomic update. The journey ID guards against a
// restarted thread: a stale generation must not touch the new journey.
func (c *Controller) generateFullPath(ctx context.Context, journeyID, threadID, topic string, band ageband.Band) {
	path, err := c.paths.GeneratePath(ctx, topic, band)
	if err != nil {
		c.logger.Warn("background path generation failed",
			zap.String("thread_id", threadID),
			zap.String("topic", topic),
			zap.Error(err))
		return
	}

	err = c.store.Update(threadID, func(j *journey.Journey) error {
		if j.ID != journeyID || j.Status != journey.StatusActive {
			return nil
		}
		j.Steps = path.Steps
		j.FullPathReady = true
		j.CompletionMessage = path.CompletionMessage
		j.PracticeQuestions = path.PracticeQuestions
		return nil
	})
	if err != nil {
		c.logger.Warn("journey gone before path arrived",
			zap.String("thread_id", threadID),
			zap.Error(err))
		return
	}

	c.logger.Info("full path ready",
		zap.String("thread_id", threadID),
		zap.String("path_title", path.Title),
		zap.Int("steps", len(path.Steps)))
}

// SubmitAnswer grades one answer against the current step. Off-topic
// answers produce a nudge and bump the nudge counter; the third
// consecutive nudge additionally offers abandonment. On-topic answers
// are graded, recorded, and reset the counter.
func (c *Controller) SubmitAnswer(ctx context.Context, threadID, answer string) (*SubmitResult, error) {
	snap, err := c.activeSnapshot("submit-answer", threadID)
	if err != nil {
		return nil, err
	}
	step := snap.CurrentStep()
	if step == nil {
		return nil, &journey.UsageError{Op: "submit-answer", Reason: "no current step to answer"}
	}

	if !c.eval.CheckRelevance(ctx, answer, step.Question, snap.Topic) {
		var count int
		err := c.store.Update(threadID, func(j *journey.Journey) error {
			j.NudgeCount++
			count = j.NudgeCount
			return nil
		})
		if err != nil {
			return nil, &journey.UsageError{Op: "submit-answer", Reason: "unknown thread " + threadID}
		}
		res := &SubmitResult{
			Type:       ResultNudge,
			Message:    nudgeMessage(snap.Topic, snap.AgeGroup, count),
			NudgeCount: count,
		}
		if count == abandonOfferAt {
			res.Type = ResultAbandonOption
			res.CanAbandon = true
		}
		return res, nil
	}

	result := c.eval.Evaluate(ctx, answer, *step, snap.Topic, snap.AgeGroup)
	now := time.Now()
	err = c.store.Update(threadID, func(j *journey.Journey) error {
		j.Responses = append(j.Responses, journey.StudentResponse{
			StepNumber: step.StepNumber,
			Question:   step.Question,
			Answer:     answer,
			Feedback:   result.Message,
			Score:      result.Score,
			Timestamp:  now,
		})
		j.NudgeCount = 0
		return nil
	})
	if err != nil {
		return nil, &journey.UsageError{Op: "submit-answer", Reason: "unknown thread " + threadID}
	}

	return &SubmitResult{
		Type:       ResultFeedback,
		Message:    result.Message,
		Score:      result.Score,
		IsCorrect:  result.IsCorrect,
		CanProceed: true,
	}, nil
}

// abandonOfferAt is the consecutive-nudge count at which abandonment
// is offered. Further off-topic answers keep nudging without
// re-offering until an on-topic answer resets the streak.
const abandonOfferAt = 3

// Advance moves to the next step, synthesizing one on demand when the
// full path never arrived, or completes the journey when the path is
// exhausted. Synthesis failure leaves the journey exactly where it
// was, so the caller can simply retry.
func (c *Controller) Advance(ctx context.Context, threadID string) (*AdvanceResult, error) {
	snap, err := c.activeSnapshot("advance", threadID)
	if err != nil {
		return nil, err
	}

	newIndex := snap.CurrentStepIndex + 1
	if newIndex < len(snap.Steps) {
		return c.commitAdvance(threadID, newIndex, nil)
	}

	profile := ageband.Lookup(snap.AgeGroup)
	if snap.FullPathReady || len(snap.Steps) >= profile.StepCount {
		return c.complete(ctx, threadID, newIndex)
	}

	// Path never arrived and the fallback curriculum is still short of
	// the band's target length: synthesize the next step from the
	// learner's recent answers. The snapshot is a clone, so moving its
	// index past the end only shapes the synthesis prompt.
	snap.CurrentStepIndex = newIndex
	step, err := c.paths.NextStep(ctx, snap)
	if err != nil {
		return nil, err
	}
	return c.commitAdvance(threadID, newIndex, step)
}

// commitAdvance applies the index move (and an optional synthesized
// step) in one store update, rechecking against the background path
// replace that may have landed since the snapshot.
func (c *Controller) commitAdvance(threadID string, newIndex int, synthesized *journey.Step) (*AdvanceResult, error) {
	var view *StepView
	err := c.store.Update(threadID, func(j *journey.Journey) error {
		if j.Status != journey.StatusActive {
			return &journey.UsageError{Op: "advance", Reason: "journey is " + string(j.Status)}
		}
		if synthesized != nil && newIndex >= len(j.Steps) {
			// Renumber against the live slice: the snapshot the step
			// was synthesized from may be stale.
			s := *synthesized
			s.StepNumber = len(j.Steps) + 1
			j.Steps = append(j.Steps, s)
		}
		if newIndex < len(j.Steps) {
			j.CurrentStepIndex = newIndex
		}
		view = stepView(j)
		return nil
	})
	if errors.Is(err, journey.ErrNotFound) {
		return nil, &journey.UsageError{Op: "advance", Reason: "unknown thread " + threadID}
	}
	if err != nil {
		return nil, err
	}
	return &AdvanceResult{Type: ResultNextStep, Step: view}, nil
}

// complete transitions the journey to completed and assembles the
// completion payload. The transition commits before the follow-up
// topics call: if that call fails the error propagates, but the
// journey is already completed and a later GetSummary can retry.
func (c *Controller) complete(ctx context.Context, threadID string, finalIndex int) (*AdvanceResult, error) {
	now := time.Now()
	var done *journey.Journey
	err := c.store.Update(threadID, func(j *journey.Journey) error {
		if j.Status != journey.StatusActive {
			return &journey.UsageError{Op: "advance", Reason: "journey is " + string(j.Status)}
		}
		j.CurrentStepIndex = finalIndex
		j.Status = journey.StatusCompleted
		j.CompletedAt = now
		done = j.Clone()
		return nil
	})
	if errors.Is(err, journey.ErrNotFound) {
		return nil, &journey.UsageError{Op: "advance", Reason: "unknown thread " + threadID}
	}
	if err != nil {
		return nil, err
	}

	msg := done.CompletionMessage
	if msg == "" {
		msg = defaultCompletionMessage(done.Topic, done.AgeGroup)
	}
	payload := &CompletionPayload{
		Title:             done.Title,
		Message:           msg,
		PracticeQuestions: done.PracticeQuestions,
		Summary:           report.BuildSummary(done),
	}

	topics, err := c.follow.FollowUpTopics(ctx, done)
	if err != nil {
		return nil, fmt.Errorf("journey completed, follow-up topics unavailable: %w", err)
	}
	payload.FollowUpTopics = topics

	return &AdvanceResult{Type: ResultCompletion, Completion: payload}, nil
}

// Abandon marks an active journey abandoned and reports how far the
// learner got.
func (c *Controller) Abandon(threadID, reason string) (*AbandonResult, error) {
	now := time.Now()
	var res *AbandonResult
	err := c.store.Update(threadID, func(j *journey.Journey) error {
		if j.Status != journey.StatusActive {
			return &journey.UsageError{Op: "abandon", Reason: "journey is " + string(j.Status)}
		}
		j.Status = journey.StatusAbandoned
		j.AbandonedAt = now
		j.AbandonReason = reason
		res = &AbandonResult{
			Type:              ResultAbandoned,
			CompletionPercent: j.CompletionPercent(),
			StepsCompleted:    j.CurrentStepIndex,
		}
		return nil
	})
	if errors.Is(err, journey.ErrNotFound) {
		return nil, &journey.UsageError{Op: "abandon", Reason: "unknown thread " + threadID}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetCurrentStep returns the step the learner is on, valid in any
// state. Nil when the thread is unknown or the index has run past the
// available steps.
func (c *Controller) GetCurrentStep(threadID string) *StepView {
	snap, ok := c.store.Snapshot(threadID)
	if !ok {
		return nil
	}
	return stepView(snap)
}

// GetStatus returns the journey's overall state, or nil for an
// unknown thread.
func (c *Controller) GetStatus(threadID string) *StatusView {
	snap, ok := c.store.Snapshot(threadID)
	if !ok {
		return nil
	}
	return &StatusView{
		Status:      snap.Status,
		CurrentStep: snap.CurrentStepIndex + 1,
		TotalSteps:  len(snap.Steps),
		Topic:       snap.Topic,
		Progress:    snap.CompletionPercent(),
	}
}

// GetSummary builds the heuristic summary for any known journey.
// Follow-up topics are fetched only for completed journeys; their
// failure propagates so the caller can retry.
func (c *Controller) GetSummary(ctx context.Context, threadID string) (*SummaryPayload, error) {
	snap, ok := c.store.Snapshot(threadID)
	if !ok {
		return nil, &journey.UsageError{Op: "summary", Reason: "unknown thread " + threadID}
	}
	payload := &SummaryPayload{Summary: report.BuildSummary(snap)}
	if snap.Status == journey.StatusCompleted {
		topics, err := c.follow.FollowUpTopics(ctx, snap)
		if err != nil {
			return nil, err
		}
		payload.FollowUpTopics = topics
	}
	return payload, nil
}

// GenerateQuiz produces the end-of-journey quiz, optionally folding in
// related context from outside this journey. Completed journeys only.
func (c *Controller) GenerateQuiz(ctx context.Context, threadID string, externalContext []string) (*quiz.Quiz, error) {
	snap, ok := c.store.Snapshot(threadID)
	if !ok {
		return nil, &journey.UsageError{Op: "quiz", Reason: "unknown thread " + threadID}
	}
	return c.quizzes.Generate(ctx, snap, externalContext)
}

// activeSnapshot fetches a snapshot and enforces the active-only rule
// shared by the mutating operations.
func (c *Controller) activeSnapshot(op, threadID string) (*journey.Journey, error) {
	snap, ok := c.store.Snapshot(threadID)
	if !ok {
		return nil, &journey.UsageError{Op: op, Reason: "unknown thread " + threadID}
	}
	if snap.Status != journey.StatusActive {
		return nil, &journey.UsageError{Op: op, Reason: "journey is " + string(snap.Status)}
	}
	return snap, nil
}

func stepView(j *journey.Journey) *StepView {
	s := j.CurrentStep()
	if s == nil {
		return nil
	}
	return &StepView{
		StepNumber: s.StepNumber,
		Title:      s.Title,
		Content:    s.Content,
		Question:   s.Question,
		TotalSteps: len(j.Steps),
		Progress:   j.CompletionPercent(),
	}
}
