package pathgen

import "stepquest/internal/llm"

// stepProperties is shared by the path and next-step schemas.
var stepProperties = map[string]any{
	"title": map[string]any{
		"type":        "string",
		"description": "Short step title (3-8 words)",
	},
	"content": map[string]any{
		"type":        "string",
		"description": "The instructional content for this step",
	},
	"question": map[string]any{
		"type":        "string",
		"description": "One question the learner answers before moving on",
	},
	"question_type": map[string]any{
		"type": "string",
		"enum": []any{"factual", "subjective", "application"},
	},
	"hints": map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": "Optional hints, easiest first",
	},
	"expected_answer": map[string]any{
		"type":        "string",
		"description": "Sketch of a good answer, used for grading context",
	},
}

// PathSchema defines the JSON schema for full learning-path generation.
var PathSchema = &llm.Schema{
	Name:        "learning-path",
	Description: "A complete multi-step learning path for one topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Engaging title for the whole journey (4-10 words)",
			},
			"steps": map[string]any{
				"type":     "array",
				"minItems": 3,
				"maxItems": 6,
				"items": map[string]any{
					"type":                 "object",
					"properties":           stepProperties,
					"required":             []any{"title", "content", "question", "question_type"},
					"additionalProperties": false,
				},
			},
			"completion_message": map[string]any{
				"type":        "string",
				"description": "Celebration message shown when the journey is finished",
			},
			"practice_questions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 questions for later practice",
			},
		},
		"required":             []any{"title", "steps", "completion_message", "practice_questions"},
		"additionalProperties": false,
	},
}

// NextStepSchema defines the JSON schema for single-step synthesis.
var NextStepSchema = &llm.Schema{
	Name:        "next-step",
	Description: "The single next step continuing an in-progress learning journey",
	Definition: map[string]any{
		"type":                 "object",
		"properties":           stepProperties,
		"required":             []any{"title", "content", "question", "question_type"},
		"additionalProperties": false,
	},
}
