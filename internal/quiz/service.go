package quiz

import (
	"context"
	"encoding/json"
	"fmt"

	"stepquest/internal/ageband"
	"stepquest/internal/journey"
	"stepquest/internal/llm"
)

// Service generates end-of-journey quizzes.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a quiz generation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type quizOutput struct {
	Title     string `json:"title"`
	Questions []struct {
		Text        string   `json:"text"`
		Options     []string `json:"options"`
		Answer      string   `json:"answer"`
		Explanation string   `json:"explanation"`
	} `json:"questions"`
	LearningObjectives []string `json:"learning_objectives"`
}

// Generate builds a quiz from the full journey transcript plus optional
// prior-session context. The journey must be completed; anything else is
// a usage error. Provider failures propagate — there is no fallback quiz.
func (s *Service) Generate(ctx context.Context, j *journey.Journey, priorContext []string) (*Quiz, error) {
	if j.Status != journey.StatusCompleted {
		return nil, &journey.UsageError{
			Op:     "generate quiz",
			Reason: fmt.Sprintf("journey is %s, quiz requires a completed journey", j.Status),
		}
	}

	ctx = llm.WithPurpose(ctx, "quiz")
	profile := ageband.Lookup(j.AgeGroup)

	req := llm.Request{
		System: quizSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuizUserMessage(j, priorContext, profile)},
		},
		Schema:      QuizSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	var out quizOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}

	quiz := &Quiz{
		Title:              out.Title,
		LearningObjectives: out.LearningObjectives,
	}
	for _, q := range out.Questions {
		quiz.Questions = append(quiz.Questions, Question{
			Text:        q.Text,
			Options:     q.Options,
			Answer:      q.Answer,
			Explanation: q.Explanation,
		})
	}
	return quiz, nil
}
