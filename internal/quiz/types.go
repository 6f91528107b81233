// Package quiz builds the end-of-journey comprehensive assessment from
// the full journey transcript.
package quiz

// Quiz is a generated assessment for one completed journey.
type Quiz struct {
	Title              string
	Questions          []Question
	LearningObjectives []string
}

// Question is one quiz item with its answer key.
type Question struct {
	Text        string
	Options     []string // empty for short-answer questions
	Answer      string
	Explanation string
}

// Config holds quiz generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for quiz generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1536,
		Temperature: 0.4,
	}
}
