package evaluate

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"stepquest/internal/ageband"
	"stepquest/internal/journey"
	"stepquest/internal/llm"
)

var testStep = journey.Step{
	StepNumber:     1,
	Title:          "Sunlight as food",
	Content:        "Plants catch sunlight with their leaves.",
	Question:       "How do plants use sunlight?",
	QuestionType:   journey.QuestionFactual,
	ExpectedAnswer: "They turn it into food (sugar).",
}

func TestCheckRelevance_Relevant(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"relevant": true}`),
	})
	svc := NewService(mock, DefaultConfig(), nil)

	if !svc.CheckRelevance(context.Background(), "Plants use sunlight to make food", testStep.Question, "Photosynthesis") {
		t.Fatal("expected relevant")
	}
}

func TestCheckRelevance_OffTopic(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"relevant": false}`),
	})
	svc := NewService(mock, DefaultConfig(), nil)

	if svc.CheckRelevance(context.Background(), "what's for lunch?", testStep.Question, "Photosynthesis") {
		t.Fatal("expected off-topic")
	}
}

func TestCheckRelevance_FailureDefaultsToTrue(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	svc := NewService(mock, DefaultConfig(), nil)

	if !svc.CheckRelevance(context.Background(), "hmm maybe", testStep.Question, "Photosynthesis") {
		t.Fatal("provider failure must default to relevant")
	}
}

func TestEvaluate_ScoreBands(t *testing.T) {
	cases := []struct {
		score       int
		wantCorrect bool
	}{
		{95, true},
		{80, true},
		{79, false},
		{50, false},
		{10, false},
	}

	for _, tc := range cases {
		mock := llm.NewMockProvider(llm.MockResponse{
			Content: json.RawMessage(`{"score": ` + strconv.Itoa(tc.score) + `, "feedback": "Nice thinking!"}`),
		})
		svc := NewService(mock, DefaultConfig(), nil)

		res := svc.Evaluate(context.Background(), "an answer", testStep, "Photosynthesis", ageband.Band8to10)
		if res.Score != tc.score {
			t.Errorf("score %d: got %d", tc.score, res.Score)
		}
		if res.IsCorrect != tc.wantCorrect {
			t.Errorf("score %d: isCorrect=%v, want %v", tc.score, res.IsCorrect, tc.wantCorrect)
		}
		if res.Message == "" {
			t.Errorf("score %d: empty feedback", tc.score)
		}
	}
}

func TestEvaluate_ClampsOutOfRangeScore(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"score": 100, "feedback": "Perfect!"}`),
	})
	svc := NewService(mock, DefaultConfig(), nil)

	res := svc.Evaluate(context.Background(), "answer", testStep, "Photosynthesis", ageband.Band14to17)
	if res.Score != 100 || !res.IsCorrect {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestEvaluate_FailureReturnsDefault(t *testing.T) {
	for _, band := range ageband.All() {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
		svc := NewService(mock, DefaultConfig(), nil)

		res := svc.Evaluate(context.Background(), "answer", testStep, "Photosynthesis", band)
		if res.Score != DefaultScore {
			t.Errorf("band %s: expected default score %d, got %d", band, DefaultScore, res.Score)
		}
		if !res.IsCorrect {
			t.Errorf("band %s: default must count as correct", band)
		}
		if res.Message == "" {
			t.Errorf("band %s: default feedback empty", band)
		}
	}
}

func TestEvaluate_PromptCarriesTone(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"score": 85, "feedback": "ok"}`),
	})
	svc := NewService(mock, DefaultConfig(), nil)

	svc.Evaluate(context.Background(), "answer", testStep, "Photosynthesis", ageband.Band5to7)

	prompt := mock.Calls[0].Messages[0].Content
	profile := ageband.Lookup(ageband.Band5to7)
	if !strings.Contains(prompt, profile.FeedbackTone) {
		t.Error("expected prompt to carry the band's feedback tone")
	}
	if !strings.Contains(prompt, "effort") {
		t.Error("expected effort-credit instruction for young band")
	}
}
