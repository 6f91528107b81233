package quiz

import "stepquest/internal/llm"

// QuizSchema defines the JSON schema for quiz generation.
var QuizSchema = &llm.Schema{
	Name:        "journey-quiz",
	Description: "A comprehensive quiz over a completed learning journey",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Quiz title referencing the topic",
			},
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The question",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Answer options; empty for short-answer",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct answer",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the answer is correct",
						},
					},
					"required":             []any{"text", "answer", "explanation"},
					"additionalProperties": false,
				},
			},
			"learning_objectives": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "What this quiz verifies the learner took away",
			},
		},
		"required":             []any{"title", "questions", "learning_objectives"},
		"additionalProperties": false,
	},
}
