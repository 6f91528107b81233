// Package evaluate grades free-text answers. Both checks are backed by
// model calls with deterministic safe defaults: an infrastructure error
// must never block a learner mid-journey.
package evaluate

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"stepquest/internal/ageband"
	"stepquest/internal/journey"
	"stepquest/internal/llm"
)

// CorrectThreshold is the score at and above which an answer counts as
// fully correct. 50-79 is partially correct, below 50 incorrect. The
// bands are fixed across ages; the profile only shapes tone and
// effort credit.
const CorrectThreshold = 80

// DefaultScore is the score substituted when grading itself fails.
const DefaultScore = 75

// Result is the transient outcome of grading one answer.
type Result struct {
	Message   string
	IsCorrect bool
	Score     int
}

// Config holds evaluation settings.
type Config struct {
	RelevanceMaxTokens int
	FeedbackMaxTokens  int
	Temperature        float64
}

// DefaultConfig returns sensible defaults for answer evaluation.
func DefaultConfig() Config {
	return Config{
		RelevanceMaxTokens: 64,
		FeedbackMaxTokens:  384,
		Temperature:        0.3,
	}
}

// Service evaluates learner answers.
type Service struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewService creates an answer evaluation service.
func NewService(provider llm.Provider, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, cfg: cfg, logger: logger}
}

type relevanceOutput struct {
	Relevant bool `json:"relevant"`
}

// CheckRelevance reports whether the answer is a genuine attempt at the
// question. The classifier is deliberately lenient, and any provider
// failure counts as relevant: blocking learning on an infra error is
// worse than accepting a borderline answer.
func (s *Service) CheckRelevance(ctx context.Context, answer, question, topic string) bool {
	ctx = llm.WithPurpose(ctx, "relevance")

	req := llm.Request{
		System: relevanceSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildRelevanceUserMessage(answer, question, topic)},
		},
		Schema:    RelevanceSchema,
		MaxTokens: s.cfg.RelevanceMaxTokens,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("relevance check failed, assuming relevant", zap.Error(err))
		return true
	}

	var out relevanceOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		s.logger.Warn("relevance check unparsable, assuming relevant", zap.Error(err))
		return true
	}
	return out.Relevant
}

type feedbackOutput struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Evaluate grades an answer against the step's question. On any provider
// failure it returns an age-toned positive default (score 75, correct)
// to preserve continuity over grading precision.
func (s *Service) Evaluate(ctx context.Context, answer string, step journey.Step, topic string, band ageband.Band) Result {
	ctx = llm.WithPurpose(ctx, "evaluate")
	profile := ageband.Lookup(band)

	req := llm.Request{
		System: feedbackSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildFeedbackUserMessage(answer, step, topic, profile)},
		},
		Schema:      FeedbackSchema,
		MaxTokens:   s.cfg.FeedbackMaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("evaluation failed, using default feedback", zap.Error(err))
		return defaultResult(band)
	}

	var out feedbackOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		s.logger.Warn("evaluation unparsable, using default feedback", zap.Error(err))
		return defaultResult(band)
	}

	score := out.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{
		Message:   out.Feedback,
		IsCorrect: score >= CorrectThreshold,
		Score:     score,
	}
}
