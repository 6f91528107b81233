// Package ageband holds the static per-age-band tutoring configuration.
// Every generative call (path, step, evaluation, quiz) reads its pacing,
// vocabulary, and tone settings from here.
package ageband

// Band is one of the four fixed learner age ranges.
type Band string

const (
	Band5to7   Band = "5-7"
	Band8to10  Band = "8-10"
	Band11to13 Band = "11-13"
	Band14to17 Band = "14-17"
)

// DefaultBand is used when a caller passes an unknown band.
const DefaultBand = Band8to10

// Profile is the immutable configuration for one age band.
type Profile struct {
	Band Band

	// StepCount is the target number of steps for a full learning path.
	StepCount int

	// Vocabulary names the language tier prompts should use.
	Vocabulary string

	// AttentionSpanMinutes is the expected attention span, used to size
	// step content.
	AttentionSpanMinutes int

	// Temperature is the generation temperature for curriculum calls.
	Temperature float64

	// FeedbackTone guides how graded feedback is phrased.
	FeedbackTone string

	// EffortCredit is true for bands graded generously on effort rather
	// than precision.
	EffortCredit bool

	// StepStyle is the band-specific instruction fragment embedded in
	// path and step generation prompts.
	StepStyle string

	// QuizQuestionCount is the number of questions in the end-of-journey quiz.
	QuizQuestionCount int

	// QuizQuestionType is the dominant question format for the quiz.
	QuizQuestionType string

	// QuizComplexity guides quiz question difficulty.
	QuizComplexity string
}

var profiles = map[Band]Profile{
	Band5to7: {
		Band:                 Band5to7,
		StepCount:            3,
		Vocabulary:           "very simple words a 6-year-old knows",
		AttentionSpanMinutes: 5,
		Temperature:          0.8,
		FeedbackTone:         "playful and celebratory, like a cheerful game",
		EffortCredit:         true,
		StepStyle: "Each step is 1-2 short sentences framed as play or a story. " +
			"Ask yes/no or picture-this questions. One idea per step.",
		QuizQuestionCount: 3,
		QuizQuestionType:  "yes-no",
		QuizComplexity:    "single-fact recall with familiar examples",
	},
	Band8to10: {
		Band:                 Band8to10,
		StepCount:            4,
		Vocabulary:           "everyday words, short sentences, concrete examples",
		AttentionSpanMinutes: 10,
		Temperature:          0.7,
		FeedbackTone:         "warm and encouraging, with a fun fact when possible",
		EffortCredit:         true,
		StepStyle: "Each step is 2-3 sentences mixing a concrete real-world example " +
			"with one simple 'why' question. Build each step on the previous one.",
		QuizQuestionCount: 4,
		QuizQuestionType:  "multiple-choice",
		QuizComplexity:    "recall plus one simple reasoning question",
	},
	Band11to13: {
		Band:                 Band11to13,
		StepCount:            5,
		Vocabulary:           "clear language with proper subject terms, briefly defined",
		AttentionSpanMinutes: 15,
		Temperature:          0.6,
		FeedbackTone:         "respectful and specific, pointing out what was done well",
		EffortCredit:         false,
		StepStyle: "Each step is a short paragraph emphasizing analysis and comparison. " +
			"Ask questions that require comparing two things or explaining a mechanism.",
		QuizQuestionCount: 5,
		QuizQuestionType:  "multiple-choice",
		QuizComplexity:    "application and comparison, not just recall",
	},
	Band14to17: {
		Band:                 Band14to17,
		StepCount:            6,
		Vocabulary:           "precise subject vocabulary, theory introduced where relevant",
		AttentionSpanMinutes: 20,
		Temperature:          0.5,
		FeedbackTone:         "direct and substantive, like a good teacher's margin notes",
		EffortCredit:         false,
		StepStyle: "Each step is theory-laden and builds toward synthesis. " +
			"Ask open questions requiring synthesis across earlier steps or " +
			"application to a novel scenario.",
		QuizQuestionCount: 6,
		QuizQuestionType:  "mixed multiple-choice and short-answer",
		QuizComplexity:    "synthesis-level, requiring reasoning across concepts",
	},
}

// Lookup returns the Profile for a band. Unknown bands get the "8-10"
// profile, so the function is total.
func Lookup(band Band) Profile {
	if p, ok := profiles[band]; ok {
		return p
	}
	return profiles[DefaultBand]
}

// Known reports whether the band is one of the four defined bands.
func Known(band Band) bool {
	_, ok := profiles[band]
	return ok
}

// All returns the four defined bands in ascending age order.
func All() []Band {
	return []Band{Band5to7, Band8to10, Band11to13, Band14to17}
}
