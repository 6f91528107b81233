package evaluate

import "stepquest/internal/llm"

// RelevanceSchema defines the JSON schema for the relevance classifier.
var RelevanceSchema = &llm.Schema{
	Name:        "answer-relevance",
	Description: "Whether a learner's reply is a genuine attempt at the question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"relevant": map[string]any{
				"type":        "boolean",
				"description": "true if the reply attempts the question",
			},
		},
		"required":             []any{"relevant"},
		"additionalProperties": false,
	},
}

// FeedbackSchema defines the JSON schema for graded feedback.
var FeedbackSchema = &llm.Schema{
	Name:        "graded-feedback",
	Description: "Score and feedback for a learner's answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     100,
				"description": "0-49 incorrect, 50-79 partial, 80-100 correct",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "1-3 sentences of age-appropriate feedback",
			},
		},
		"required":             []any{"score", "feedback"},
		"additionalProperties": false,
	},
}
