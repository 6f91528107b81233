package progression

import (
	"fmt"
	"math/rand"
	"sync"

	"stepquest/internal/ageband"
	"stepquest/internal/journey"
)

// TemplatePicker selects which quick-start template to use for a new
// journey. Injectable so tests can pin the choice.
type TemplatePicker interface {
	// Pick returns an index in [0, n).
	Pick(n int) int
}

// NewSeededPicker returns a picker backed by its own rand source, safe
// for concurrent use. The same seed reproduces the same sequence.
func NewSeededPicker(seed int64) TemplatePicker {
	return &seededPicker{r: rand.New(rand.NewSource(seed))}
}

type seededPicker struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (p *seededPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.Intn(n)
}

// FixedPicker always picks the same index (clamped to range).
type FixedPicker int

func (p FixedPicker) Pick(n int) int {
	if int(p) >= n {
		return n - 1
	}
	return int(p)
}

// quickTemplate is one canned opener: a one-sentence intro and a
// question, both parameterized by topic. Served instantly while the
// real path generates in the background.
type quickTemplate struct {
	intro    string
	question string
	qtype    journey.QuestionType
}

var quickTemplates = map[ageband.Band][]quickTemplate{
	ageband.Band5to7: {
		{
			intro:    "We're going on a fun adventure to learn about %s!",
			question: "Have you ever seen or heard about %s before?",
			qtype:    journey.QuestionSubjective,
		},
		{
			intro:    "Let's play a discovery game all about %s!",
			question: "What do you think %s might be? Take a guess!",
			qtype:    journey.QuestionSubjective,
		},
		{
			intro:    "Today we get to explore something amazing: %s!",
			question: "Does %s sound exciting to you? Why?",
			qtype:    journey.QuestionSubjective,
		},
	},
	ageband.Band8to10: {
		{
			intro:    "We're about to explore %s together, one step at a time.",
			question: "What's one thing you already know (or wonder) about %s?",
			qtype:    journey.QuestionSubjective,
		},
		{
			intro:    "Get ready to discover how %s works!",
			question: "Where have you come across %s in everyday life?",
			qtype:    journey.QuestionSubjective,
		},
		{
			intro:    "Let's dig into %s and find out what makes it interesting.",
			question: "If you could ask one question about %s, what would it be?",
			qtype:    journey.QuestionSubjective,
		},
	},
	ageband.Band11to13: {
		{
			intro:    "We'll work through %s step by step, building up from the basics.",
			question: "What do you already know about %s, and what would you like to figure out?",
			qtype:    journey.QuestionSubjective,
		},
		{
			intro:    "This journey breaks %s down into pieces you can reason about.",
			question: "Why do you think %s might matter outside the classroom?",
			qtype:    journey.QuestionApplication,
		},
	},
	ageband.Band14to17: {
		{
			intro:    "This path covers %s from first principles through to the bigger picture.",
			question: "What is your current understanding of %s, and where does it feel shaky?",
			qtype:    journey.QuestionSubjective,
		},
		{
			intro:    "We'll treat %s rigorously, connecting the theory to real cases.",
			question: "Can you think of a real-world system or problem where %s plays a role?",
			qtype:    journey.QuestionApplication,
		},
	},
}

// quickStep builds the instant first step for a new journey.
func quickStep(topic string, band ageband.Band, picker TemplatePicker) journey.Step {
	templates, ok := quickTemplates[band]
	if !ok {
		templates = quickTemplates[ageband.DefaultBand]
	}
	t := templates[picker.Pick(len(templates))]
	return journey.Step{
		StepNumber:   1,
		Title:        fmt.Sprintf("Getting started with %s", topic),
		Content:      fmt.Sprintf(t.intro, topic),
		Question:     fmt.Sprintf(t.question, topic),
		QuestionType: t.qtype,
		Provenance:   journey.ProvenanceQuick,
	}
}

// nudgeMessages redirect an off-topic learner back to the question.
// Indexed by how many nudges this streak has already seen, capped at
// the last entry.
var nudgeMessages = map[ageband.Band][]string{
	ageband.Band5to7: {
		"Oops, let's get back to %s! Can you try the question again?",
		"That's a fun thought! But first, let's answer our question about %s.",
		"Let's finish our %s adventure! Want to try the question, or would you rather stop here?",
	},
	ageband.Band8to10: {
		"Good try, but let's stay with %s for now. Give the question another go!",
		"Let's keep our focus on %s. Re-read the question and tell me what you think.",
		"We keep drifting away from %s. Want to try once more, or stop the journey here?",
	},
	ageband.Band11to13: {
		"That doesn't quite answer the question. Let's stick with %s.",
		"Still off track. Take another look at the question about %s.",
		"We've gone off topic a few times. Try the %s question again, or you can end the journey.",
	},
	ageband.Band14to17: {
		"That's not addressing the question. Let's stay on %s.",
		"Off topic again. The question is about %s; give it a focused attempt.",
		"Three strikes on %s. Answer the question as asked, or abandon the journey if you'd rather.",
	},
}

func nudgeMessage(topic string, band ageband.Band, count int) string {
	msgs, ok := nudgeMessages[band]
	if !ok {
		msgs = nudgeMessages[ageband.DefaultBand]
	}
	idx := count - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(msgs) {
		idx = len(msgs) - 1
	}
	return fmt.Sprintf(msgs[idx], topic)
}

// defaultCompletionMessage covers journeys that finished on the
// synthesized fallback path and never received a generated
// completion message.
func defaultCompletionMessage(topic string, band ageband.Band) string {
	switch band {
	case ageband.Band5to7:
		return fmt.Sprintf("Hooray! You finished your whole adventure about %s! Amazing job!", topic)
	case ageband.Band8to10:
		return fmt.Sprintf("Congratulations, you made it through every step of %s! Great work!", topic)
	case ageband.Band11to13:
		return fmt.Sprintf("Well done — you've completed the full journey through %s.", topic)
	default:
		return fmt.Sprintf("Journey complete. You've worked through %s from start to finish.", topic)
	}
}
