// Package pathgen generates curriculum content: the full multi-step
// learning path (one large call, run in the background) and the single
// next step used as a fallback when the full path never arrived.
package pathgen

import "stepquest/internal/journey"

// GeneratedPath is the parsed result of one full-path generation call.
type GeneratedPath struct {
	Title             string
	Steps             []journey.Step // provenance "planned", numbered from 1
	CompletionMessage string
	PracticeQuestions []string
}

// Config holds generation settings.
type Config struct {
	PathMaxTokens int
	StepMaxTokens int
}

// DefaultConfig returns sensible defaults for curriculum generation.
func DefaultConfig() Config {
	return Config{
		PathMaxTokens: 2048,
		StepMaxTokens: 512,
	}
}
