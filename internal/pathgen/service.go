package pathgen

import (
	"context"
	"encoding/json"
	"fmt"

	"stepquest/internal/ageband"
	"stepquest/internal/journey"
	"stepquest/internal/llm"
)

// Service generates curriculum content through the model provider.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a path generation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type stepOutput struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Question       string   `json:"question"`
	QuestionType   string   `json:"question_type"`
	Hints          []string `json:"hints"`
	ExpectedAnswer string   `json:"expected_answer"`
}

type pathOutput struct {
	Title             string       `json:"title"`
	Steps             []stepOutput `json:"steps"`
	CompletionMessage string       `json:"completion_message"`
	PracticeQuestions []string     `json:"practice_questions"`
}

// GeneratePath produces the full multi-step path for a topic in one
// model call. Parse and validation failures propagate — the bootstrap
// layer decides whether to swallow them.
func (s *Service) GeneratePath(ctx context.Context, topic string, band ageband.Band) (*GeneratedPath, error) {
	ctx = llm.WithPurpose(ctx, "path")
	profile := ageband.Lookup(band)

	req := llm.Request{
		System: pathSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPathUserMessage(topic, profile)},
		},
		Schema:      PathSchema,
		MaxTokens:   s.cfg.PathMaxTokens,
		Temperature: profile.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("path generation: %w", err)
	}

	var out pathOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse path response: %w", err)
	}

	steps := make([]journey.Step, len(out.Steps))
	for i, so := range out.Steps {
		steps[i] = stepFromOutput(so, i+1, journey.ProvenancePlanned)
	}

	return &GeneratedPath{
		Title:             out.Title,
		Steps:             steps,
		CompletionMessage: out.CompletionMessage,
		PracticeQuestions: out.PracticeQuestions,
	}, nil
}

// NextStep synthesizes the single step after the ones the journey
// already has, grounded in the learner's last one or two answers. The
// caller passes a snapshot; on any failure the caller must treat the
// journey as unable to advance, never fabricate a step.
func (s *Service) NextStep(ctx context.Context, j *journey.Journey) (*journey.Step, error) {
	ctx = llm.WithPurpose(ctx, "next-step")
	profile := ageband.Lookup(j.AgeGroup)

	req := llm.Request{
		System: nextStepSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildNextStepUserMessage(j, profile)},
		},
		Schema:      NextStepSchema,
		MaxTokens:   s.cfg.StepMaxTokens,
		Temperature: profile.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("next-step synthesis: %w", err)
	}

	var out stepOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse next-step response: %w", err)
	}

	step := stepFromOutput(out, len(j.Steps)+1, journey.ProvenanceOnDemand)
	return &step, nil
}

func stepFromOutput(so stepOutput, number int, prov journey.Provenance) journey.Step {
	qt := journey.QuestionType(so.QuestionType)
	switch qt {
	case journey.QuestionFactual, journey.QuestionSubjective, journey.QuestionApplication:
	default:
		qt = journey.QuestionFactual
	}
	return journey.Step{
		StepNumber:     number,
		Title:          so.Title,
		Content:        so.Content,
		Question:       so.Question,
		QuestionType:   qt,
		Hints:          so.Hints,
		ExpectedAnswer: so.ExpectedAnswer,
		Provenance:     prov,
	}
}
