package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"stepquest/internal/ageband"
	"stepquest/internal/journey"
	"stepquest/internal/llm"
)

// FollowUpCount is the fixed number of deeper topics suggested.
const FollowUpCount = 3

// Topic is one suggested follow-up.
type Topic struct {
	Title  string
	Reason string
}

// Config holds follow-up generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for follow-up generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.6,
	}
}

// Service generates follow-up topic suggestions.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a follow-up topic service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

const followUpSystemPrompt = `You suggest what a learner should study next after finishing a topic. Suggestions must go strictly deeper into the same topic, never sideways into adjacent subjects.`

func buildFollowUpUserMessage(j *journey.Journey, profile ageband.Profile) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Completed topic: %s\n", j.Topic))
	b.WriteString(fmt.Sprintf("Journey title: %s\n", j.Title))
	b.WriteString(fmt.Sprintf("Learner age: %s\n", profile.Band))
	b.WriteString(fmt.Sprintf("Average score: %.0f\n", j.AverageScore()))

	b.WriteString("\nSteps covered:\n")
	for _, step := range j.Steps {
		b.WriteString(fmt.Sprintf("- %s\n", step.Title))
	}

	b.WriteString(fmt.Sprintf(`
Instructions:
Suggest exactly %d follow-up topics that dig DEEPER into %q — more detail, mechanism, or advanced aspects of the same subject. Do not suggest sibling or adjacent topics. For each, give a short title and one sentence on why it is the natural next layer. Use %s.`,
		FollowUpCount, j.Topic, profile.Vocabulary))

	return b.String()
}

// FollowUpSchema defines the JSON schema for follow-up topics.
var FollowUpSchema = &llm.Schema{
	Name:        "follow-up-topics",
	Description: "Deeper follow-up topics after a completed learning journey",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":     "array",
				"minItems": FollowUpCount,
				"maxItems": FollowUpCount,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":  map[string]any{"type": "string"},
						"reason": map[string]any{"type": "string"},
					},
					"required":             []any{"title", "reason"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"topics"},
		"additionalProperties": false,
	},
}

type followUpOutput struct {
	Topics []struct {
		Title  string `json:"title"`
		Reason string `json:"reason"`
	} `json:"topics"`
}

// FollowUpTopics requests exactly three strictly-deeper topics. There is
// no deterministic fallback; failures propagate to the caller.
func (s *Service) FollowUpTopics(ctx context.Context, j *journey.Journey) ([]Topic, error) {
	ctx = llm.WithPurpose(ctx, "follow-ups")
	profile := ageband.Lookup(j.AgeGroup)

	req := llm.Request{
		System: followUpSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildFollowUpUserMessage(j, profile)},
		},
		Schema:      FollowUpSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("follow-up topics: %w", err)
	}

	var out followUpOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse follow-up response: %w", err)
	}

	topics := make([]Topic, len(out.Topics))
	for i, t := range out.Topics {
		topics[i] = Topic{Title: t.Title, Reason: t.Reason}
	}
	return topics, nil
}
