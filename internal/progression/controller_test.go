package progression

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"stepquest/internal/ageband"
	"stepquest/internal/evaluate"
	"stepquest/internal/journey"
	"stepquest/internal/llm"
	"stepquest/internal/pathgen"
	"stepquest/internal/quiz"
	"stepquest/internal/report"
)

type env struct {
	ctrl      *Controller
	store     *journey.Store
	pathProv  *llm.MockProvider
	evalProv  *llm.MockProvider
	followCal *llm.MockProvider
	quizProv  *llm.MockProvider
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:     journey.NewStore(0, 0),
		pathProv:  llm.NewMockProvider(),
		evalProv:  llm.NewMockProvider(),
		followCal: llm.NewMockProvider(),
		quizProv:  llm.NewMockProvider(),
	}
	e.ctrl = NewController(Deps{
		Store:     e.store,
		Paths:     pathgen.NewService(e.pathProv, pathgen.DefaultConfig()),
		Evaluator: evaluate.NewService(e.evalProv, evaluate.DefaultConfig(), nil),
		FollowUps: report.NewService(e.followCal, report.DefaultConfig()),
		Quizzes:   quiz.NewService(e.quizProv, quiz.DefaultConfig()),
		Picker:    FixedPicker(0),
	})
	return e
}

func pathJSON() json.RawMessage {
	return json.RawMessage(`{
		"title": "Journey Into Photosynthesis",
		"steps": [
			{"title": "Sunlight as food", "content": "Plants catch sunlight with their leaves.", "question": "Where do plants catch sunlight?", "question_type": "factual"},
			{"title": "Water and air", "content": "Roots drink water, leaves breathe in air.", "question": "Why do plants need roots?", "question_type": "factual"},
			{"title": "Making sugar", "content": "Sunlight, water, and air combine into sugar.", "question": "What do plants make from sunlight?", "question_type": "application"},
			{"title": "Oxygen for us", "content": "Plants release oxygen we breathe.", "question": "What do plants give back to us?", "question_type": "factual"}
		],
		"completion_message": "You did it! You know how plants make food.",
		"practice_questions": ["What color catches sunlight?", "Can plants grow in the dark?"]
	}`)
}

func stepJSON(title string) json.RawMessage {
	return json.RawMessage(`{
		"title": "` + title + `",
		"content": "A little more depth on the topic.",
		"question": "What did we just learn?",
		"question_type": "factual"
	}`)
}

func relevanceJSON(relevant bool) llm.MockResponse {
	if relevant {
		return llm.MockResponse{Content: json.RawMessage(`{"relevant": true}`)}
	}
	return llm.MockResponse{Content: json.RawMessage(`{"relevant": false}`)}
}

func feedbackJSON(score int) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{"score": ` + strconv.Itoa(score) + `, "feedback": "Nice reasoning!"}`)}
}

func followUpJSON() llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{
		"topics": [
			{"title": "Chlorophyll", "reason": "The molecule behind the magic"},
			{"title": "The carbon cycle", "reason": "Where the absorbed CO2 fits in"},
			{"title": "Plant adaptations", "reason": "How leaves vary by climate"}
		]
	}`)}
}

// waitReady polls until the background path generation has landed.
func waitReady(t *testing.T, e *env, threadID string) *journey.Journey {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, ok := e.store.Snapshot(threadID)
		if ok && snap.FullPathReady {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("full path never became ready")
	return nil
}

// waitPathCalls polls until the path provider has seen at least n calls.
func waitPathCalls(t *testing.T, e *env, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.pathProv.CallCount() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("path provider saw %d calls, want at least %d", e.pathProv.CallCount(), n)
}

func TestStartServesQuickStepImmediately(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Content: pathJSON()})

	j, err := e.ctrl.Start(context.Background(), "t1", "Photosynthesis", ageband.Band8to10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Status != journey.StatusActive {
		t.Errorf("status %q, want active", j.Status)
	}
	if len(j.Steps) != 1 {
		t.Fatalf("expected exactly one quick step, got %d", len(j.Steps))
	}
	if j.Steps[0].Provenance != journey.ProvenanceQuick {
		t.Errorf("provenance %q, want quick", j.Steps[0].Provenance)
	}
	if j.FullPathReady {
		t.Error("fullPathReady should be false before background generation lands")
	}
	if !strings.Contains(j.Steps[0].Question, "Photosynthesis") {
		t.Errorf("quick question should mention the topic: %q", j.Steps[0].Question)
	}

	ready := waitReady(t, e, "t1")
	if len(ready.Steps) != 4 {
		t.Errorf("expected 4 planned steps, got %d", len(ready.Steps))
	}
	if ready.Steps[0].Provenance != journey.ProvenancePlanned {
		t.Errorf("provenance %q, want planned", ready.Steps[0].Provenance)
	}
	if ready.Title != j.Title {
		t.Errorf("title changed across path replace: %q -> %q", j.Title, ready.Title)
	}
	if ready.CompletionMessage == "" {
		t.Error("completion message should arrive with the path")
	}
}

// The snapshot Start returns must be fully detached from the journey
// the background generation mutates. With an instantly-resolving
// provider the replace lands almost immediately, so reading the
// returned snapshot here races with the swap unless Start cloned
// before launching the goroutine. Run with -race.
func TestStartSnapshotIsolatedFromBackgroundReplace(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 500; i++ {
		e.pathProv.AddResponse(llm.MockResponse{Content: pathJSON()})
		j, err := e.ctrl.Start(context.Background(), "t"+strconv.Itoa(i), "Photosynthesis", ageband.Band8to10)
		if err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		if j.FullPathReady {
			t.Fatalf("start %d: snapshot already marked ready", i)
		}
		if len(j.Steps) != 1 || j.Steps[0].Provenance != journey.ProvenanceQuick {
			t.Fatalf("start %d: snapshot shows replaced steps: %+v", i, j.Steps)
		}
	}
}

func TestStartBackgroundFailureStaysQuiet(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Err: errors.New("model down")})

	if _, err := e.ctrl.Start(context.Background(), "t1", "Volcanoes", ageband.Band8to10); err != nil {
		t.Fatalf("start must not surface background failure: %v", err)
	}
	waitPathCalls(t, e, 1)

	snap, ok := e.store.Snapshot("t1")
	if !ok {
		t.Fatal("journey missing")
	}
	if snap.FullPathReady {
		t.Error("fullPathReady must stay false after generation failure")
	}
	if len(snap.Steps) != 1 {
		t.Errorf("quick step should survive, got %d steps", len(snap.Steps))
	}
}

func TestStartUnknownBandFallsBack(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Err: errors.New("model down")})

	j, err := e.ctrl.Start(context.Background(), "t1", "Gravity", "toddler")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.AgeGroup != ageband.DefaultBand {
		t.Errorf("band %q, want default %q", j.AgeGroup, ageband.DefaultBand)
	}
}

func TestStalePathGenerationIsDropped(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Err: errors.New("model down")})
	j, err := e.ctrl.Start(context.Background(), "t1", "Photosynthesis", ageband.Band8to10)
	if err != nil {
		t.Fatal(err)
	}
	waitPathCalls(t, e, 1)

	// A generation started for a journey that was since replaced must
	// not touch the current one.
	e.pathProv.AddResponse(llm.MockResponse{Content: pathJSON()})
	e.ctrl.generateFullPath(context.Background(), "stale-journey-id", "t1", "Photosynthesis", ageband.Band8to10)
	snap, _ := e.store.Snapshot("t1")
	if snap.FullPathReady {
		t.Fatal("stale generation must not mark the current journey ready")
	}

	// The matching journey ID does land.
	e.pathProv.AddResponse(llm.MockResponse{Content: pathJSON()})
	e.ctrl.generateFullPath(context.Background(), j.ID, "t1", "Photosynthesis", ageband.Band8to10)
	snap, _ = e.store.Snapshot("t1")
	if !snap.FullPathReady {
		t.Fatal("matching generation should mark the journey ready")
	}
}

func TestSubmitAnswerNudgeThenFeedback(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Content: pathJSON()})
	if _, err := e.ctrl.Start(context.Background(), "t1", "Photosynthesis", ageband.Band8to10); err != nil {
		t.Fatal(err)
	}

	e.evalProv.AddResponse(relevanceJSON(false))
	res, err := e.ctrl.SubmitAnswer(context.Background(), "t1", "I don't know, what's for lunch?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Type != ResultNudge {
		t.Errorf("type %q, want nudge", res.Type)
	}
	if res.NudgeCount != 1 {
		t.Errorf("nudgeCount %d, want 1", res.NudgeCount)
	}
	if res.CanAbandon {
		t.Error("first nudge must not offer abandonment")
	}
	if !strings.Contains(res.Message, "Photosynthesis") {
		t.Errorf("nudge should mention the topic: %q", res.Message)
	}

	e.evalProv.AddResponse(relevanceJSON(true))
	e.evalProv.AddResponse(feedbackJSON(90))
	res, err = e.ctrl.SubmitAnswer(context.Background(), "t1", "Plants use sunlight to make food")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Type != ResultFeedback {
		t.Errorf("type %q, want feedback", res.Type)
	}
	if res.Score < 0 || res.Score > 100 {
		t.Errorf("score %d out of range", res.Score)
	}
	if !res.IsCorrect || !res.CanProceed {
		t.Errorf("90 should be correct and allow proceeding: %+v", res)
	}

	snap, _ := e.store.Snapshot("t1")
	if snap.NudgeCount != 0 {
		t.Errorf("nudgeCount %d after on-topic answer, want 0", snap.NudgeCount)
	}
	if len(snap.Responses) != 1 {
		t.Fatalf("expected 1 recorded response, got %d", len(snap.Responses))
	}
	if snap.Responses[0].Answer != "Plants use sunlight to make food" {
		t.Errorf("recorded wrong answer: %q", snap.Responses[0].Answer)
	}
}

func TestThirdNudgeOffersAbandonOnce(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Content: pathJSON()})
	if _, err := e.ctrl.Start(context.Background(), "t1", "Photosynthesis", ageband.Band8to10); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 4; i++ {
		e.evalProv.AddResponse(relevanceJSON(false))
		res, err := e.ctrl.SubmitAnswer(context.Background(), "t1", "something else entirely")
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if res.NudgeCount != i {
			t.Errorf("answer %d: nudgeCount %d", i, res.NudgeCount)
		}
		wantAbandon := i == 3
		if res.CanAbandon != wantAbandon {
			t.Errorf("answer %d: canAbandon=%v, want %v", i, res.CanAbandon, wantAbandon)
		}
		if wantAbandon && res.Type != ResultAbandonOption {
			t.Errorf("answer 3: type %q, want abandon_option", res.Type)
		}
		if !wantAbandon && res.Type != ResultNudge {
			t.Errorf("answer %d: type %q, want nudge", i, res.Type)
		}
	}
}

func TestAdvanceThroughReadyPathToCompletion(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Content: pathJSON()})
	if _, err := e.ctrl.Start(context.Background(), "t1", "Photosynthesis", ageband.Band8to10); err != nil {
		t.Fatal(err)
	}
	waitReady(t, e, "t1")

	for want := 2; want <= 4; want++ {
		res, err := e.ctrl.Advance(context.Background(), "t1")
		if err != nil {
			t.Fatalf("advance to step %d: %v", want, err)
		}
		if res.Type != ResultNextStep || res.Step == nil {
			t.Fatalf("advance to step %d: got %+v", want, res)
		}
		if res.Step.StepNumber != want {
			t.Errorf("stepNumber %d, want %d", res.Step.StepNumber, want)
		}
		if res.Step.TotalSteps != 4 {
			t.Errorf("totalSteps %d, want 4", res.Step.TotalSteps)
		}
	}

	e.followCal.AddResponse(followUpJSON())
	res, err := e.ctrl.Advance(context.Background(), "t1")
	if err != nil {
		t.Fatalf("final advance: %v", err)
	}
	if res.Type != ResultCompletion || res.Completion == nil {
		t.Fatalf("expected completion, got %+v", res)
	}
	c := res.Completion
	if c.Message != "You did it! You know how plants make food." {
		t.Errorf("unexpected completion message: %q", c.Message)
	}
	if len(c.PracticeQuestions) != 2 {
		t.Errorf("practice questions %d, want 2", len(c.PracticeQuestions))
	}
	if len(c.FollowUpTopics) != report.FollowUpCount {
		t.Errorf("follow-up topics %d, want %d", len(c.FollowUpTopics), report.FollowUpCount)
	}
	if c.Summary.StepsCompleted == 0 {
		t.Error("summary should count completed steps")
	}

	// No synthesis ever ran: one path call, nothing else.
	if e.pathProv.CallCount() != 1 {
		t.Errorf("path provider calls %d, want 1 (no synthesis on a ready path)", e.pathProv.CallCount())
	}

	st := e.ctrl.GetStatus("t1")
	if st == nil || st.Status != journey.StatusCompleted {
		t.Fatalf("status %+v, want completed", st)
	}
	if st.Progress != 100 {
		t.Errorf("progress %d, want 100", st.Progress)
	}
}

func TestAdvanceSynthesizesWhenPathNeverArrived(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Err: errors.New("model down")})

	// 5-7 targets 3 steps, so the fallback path needs two syntheses.
	if _, err := e.ctrl.Start(context.Background(), "t1", "Dinosaurs", ageband.Band5to7); err != nil {
		t.Fatal(err)
	}
	waitPathCalls(t, e, 1)

	e.pathProv.AddResponse(llm.MockResponse{Content: stepJSON("More dinosaurs")})
	res, err := e.ctrl.Advance(context.Background(), "t1")
	if err != nil {
		t.Fatalf("first synthesized advance: %v", err)
	}
	if res.Type != ResultNextStep || res.Step.StepNumber != 2 {
		t.Fatalf("expected synthesized step 2, got %+v", res)
	}
	snap, _ := e.store.Snapshot("t1")
	if snap.Steps[1].Provenance != journey.ProvenanceOnDemand {
		t.Errorf("provenance %q, want on-demand", snap.Steps[1].Provenance)
	}

	e.pathProv.AddResponse(llm.MockResponse{Content: stepJSON("Even more dinosaurs")})
	if _, err := e.ctrl.Advance(context.Background(), "t1"); err != nil {
		t.Fatalf("second synthesized advance: %v", err)
	}

	// The synthesizer runs only while the fallback path is short of
	// the band's target length. Once it has delivered that many steps
	// the journey ends on the next advance without one more synthesis
	// call: without the length cap a path-less journey could never
	// complete.
	calls := e.pathProv.CallCount()
	e.followCal.AddResponse(followUpJSON())
	res, err = e.ctrl.Advance(context.Background(), "t1")
	if err != nil {
		t.Fatalf("completing advance: %v", err)
	}
	if res.Type != ResultCompletion {
		t.Fatalf("expected completion, got %+v", res)
	}
	if e.pathProv.CallCount() != calls {
		t.Error("completion must not trigger synthesis once target length is reached")
	}
	if !strings.Contains(res.Completion.Message, "Dinosaurs") {
		t.Errorf("fallback completion message should mention the topic: %q", res.Completion.Message)
	}
}

func TestAdvanceSynthesisFailureIsRetryable(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Err: errors.New("model down")})
	if _, err := e.ctrl.Start(context.Background(), "t1", "Dinosaurs", ageband.Band5to7); err != nil {
		t.Fatal(err)
	}
	waitPathCalls(t, e, 1)

	e.pathProv.AddResponse(llm.MockResponse{Err: errors.New("still down")})
	if _, err := e.ctrl.Advance(context.Background(), "t1"); err == nil {
		t.Fatal("expected synthesis failure to surface")
	}

	// Nothing moved: same step, still answerable.
	st := e.ctrl.GetStatus("t1")
	if st.CurrentStep != 1 || st.Status != journey.StatusActive {
		t.Fatalf("journey moved on failure: %+v", st)
	}

	e.pathProv.AddResponse(llm.MockResponse{Content: stepJSON("Back online")})
	res, err := e.ctrl.Advance(context.Background(), "t1")
	if err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if res.Step.StepNumber != 2 {
		t.Errorf("stepNumber %d, want 2", res.Step.StepNumber)
	}
}

func TestAbandonReportsProgress(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Content: pathJSON()})
	if _, err := e.ctrl.Start(context.Background(), "t1", "Photosynthesis", ageband.Band8to10); err != nil {
		t.Fatal(err)
	}
	waitReady(t, e, "t1")

	for i := 0; i < 2; i++ {
		if _, err := e.ctrl.Advance(context.Background(), "t1"); err != nil {
			t.Fatal(err)
		}
	}

	res, err := e.ctrl.Abandon("t1", "lost interest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Type != ResultAbandoned {
		t.Errorf("type %q, want abandoned", res.Type)
	}
	if res.CompletionPercent != 50 {
		t.Errorf("completionPercent %d, want 50 (2 of 4)", res.CompletionPercent)
	}
	if res.StepsCompleted != 2 {
		t.Errorf("stepsCompleted %d, want 2", res.StepsCompleted)
	}

	if _, err := e.ctrl.Abandon("t1", "again"); !journey.IsUsageError(err) {
		t.Errorf("second abandon should be a usage error, got %v", err)
	}
	snap, _ := e.store.Snapshot("t1")
	if snap.AbandonReason != "lost interest" {
		t.Errorf("reason %q", snap.AbandonReason)
	}
}

func TestMutationsRejectNonActiveJourneys(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Err: errors.New("model down")})
	if _, err := e.ctrl.Start(context.Background(), "t1", "Photosynthesis", ageband.Band8to10); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ctrl.Abandon("t1", ""); err != nil {
		t.Fatal(err)
	}

	if _, err := e.ctrl.SubmitAnswer(context.Background(), "t1", "hi"); !journey.IsUsageError(err) {
		t.Errorf("submit on abandoned journey: %v", err)
	}
	if _, err := e.ctrl.Advance(context.Background(), "t1"); !journey.IsUsageError(err) {
		t.Errorf("advance on abandoned journey: %v", err)
	}
	if e.evalProv.CallCount() != 0 {
		t.Error("no evaluation call should happen for a non-active journey")
	}

	// Reads stay valid in any state.
	if e.ctrl.GetStatus("t1") == nil {
		t.Error("status read should work on abandoned journeys")
	}
	if e.ctrl.GetCurrentStep("t1") == nil {
		t.Error("step read should work on abandoned journeys")
	}
}

func TestUnknownThread(t *testing.T) {
	e := newEnv(t)

	if e.ctrl.GetCurrentStep("nope") != nil {
		t.Error("unknown thread should read as nil")
	}
	if e.ctrl.GetStatus("nope") != nil {
		t.Error("unknown thread should read as nil")
	}
	if _, err := e.ctrl.SubmitAnswer(context.Background(), "nope", "hi"); !journey.IsUsageError(err) {
		t.Errorf("want usage error, got %v", err)
	}
	if _, err := e.ctrl.Advance(context.Background(), "nope"); !journey.IsUsageError(err) {
		t.Errorf("want usage error, got %v", err)
	}
	if _, err := e.ctrl.Abandon("nope", ""); !journey.IsUsageError(err) {
		t.Errorf("want usage error, got %v", err)
	}
	if _, err := e.ctrl.GetSummary(context.Background(), "nope"); !journey.IsUsageError(err) {
		t.Errorf("want usage error, got %v", err)
	}
}

func TestFollowUpFailureLeavesJourneyCompleted(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Content: pathJSON()})
	if _, err := e.ctrl.Start(context.Background(), "t1", "Photosynthesis", ageband.Band8to10); err != nil {
		t.Fatal(err)
	}
	waitReady(t, e, "t1")
	for i := 0; i < 3; i++ {
		if _, err := e.ctrl.Advance(context.Background(), "t1"); err != nil {
			t.Fatal(err)
		}
	}

	e.followCal.AddResponse(llm.MockResponse{Err: errors.New("model down")})
	if _, err := e.ctrl.Advance(context.Background(), "t1"); err == nil {
		t.Fatal("expected follow-up failure to surface")
	}

	st := e.ctrl.GetStatus("t1")
	if st.Status != journey.StatusCompleted {
		t.Fatalf("status %q, want completed despite follow-up failure", st.Status)
	}

	// Summary can fetch the topics afterwards.
	e.followCal.AddResponse(followUpJSON())
	sum, err := e.ctrl.GetSummary(context.Background(), "t1")
	if err != nil {
		t.Fatalf("summary retry: %v", err)
	}
	if len(sum.FollowUpTopics) != report.FollowUpCount {
		t.Errorf("follow-up topics %d, want %d", len(sum.FollowUpTopics), report.FollowUpCount)
	}
}

func TestGenerateQuizDelegatesCompletionCheck(t *testing.T) {
	e := newEnv(t)
	e.pathProv.AddResponse(llm.MockResponse{Err: errors.New("model down")})
	if _, err := e.ctrl.Start(context.Background(), "t1", "Photosynthesis", ageband.Band8to10); err != nil {
		t.Fatal(err)
	}

	if _, err := e.ctrl.GenerateQuiz(context.Background(), "t1", nil); !journey.IsUsageError(err) {
		t.Errorf("quiz on active journey: %v", err)
	}
	if _, err := e.ctrl.GenerateQuiz(context.Background(), "nope", nil); !journey.IsUsageError(err) {
		t.Errorf("quiz on unknown thread: %v", err)
	}
	if e.quizProv.CallCount() != 0 {
		t.Error("no quiz call should reach the provider")
	}
}

func TestFixedAndSeededPickers(t *testing.T) {
	if got := FixedPicker(1).Pick(3); got != 1 {
		t.Errorf("fixed picker: %d", got)
	}
	if got := FixedPicker(5).Pick(2); got != 1 {
		t.Errorf("fixed picker clamp: %d", got)
	}

	a, b := NewSeededPicker(42), NewSeededPicker(42)
	for i := 0; i < 10; i++ {
		x, y := a.Pick(7), b.Pick(7)
		if x != y {
			t.Fatalf("same seed diverged at %d: %d vs %d", i, x, y)
		}
		if x < 0 || x >= 7 {
			t.Fatalf("pick out of range: %d", x)
		}
	}
}
