package pathgen

import (
	"fmt"
	"strings"

	"stepquest/internal/ageband"
	"stepquest/internal/journey"
)

const pathSystemPrompt = `You are a curriculum designer for a one-on-one tutoring app. You break a topic into a short sequence of teaching steps, each ending in one question the learner answers before moving on.`

func buildPathUserMessage(topic string, profile ageband.Profile) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Topic: %s\n", topic))
	b.WriteString(fmt.Sprintf("Learner age: %s\n", profile.Band))
	b.WriteString(fmt.Sprintf("Vocabulary: %s\n", profile.Vocabulary))
	b.WriteString(fmt.Sprintf("Attention span: about %d minutes total\n", profile.AttentionSpanMinutes))

	b.WriteString(fmt.Sprintf(`
Instructions:
Create a learning path with exactly %d steps.
%s
Number the steps implicitly by array order. Each step must end with exactly one question.
Also write a short completion message congratulating the learner, and 2-4 practice questions they can try later.`,
		profile.StepCount, profile.StepStyle))

	return b.String()
}

const nextStepSystemPrompt = `You are a tutor continuing an in-progress learning journey. Generate the single next teaching step so it follows logically from what the learner just said.`

func buildNextStepUserMessage(j *journey.Journey, profile ageband.Profile) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Topic: %s\n", j.Topic))
	b.WriteString(fmt.Sprintf("Journey title: %s\n", j.Title))
	b.WriteString(fmt.Sprintf("Learner age: %s\n", profile.Band))
	b.WriteString(fmt.Sprintf("Vocabulary: %s\n", profile.Vocabulary))
	b.WriteString(fmt.Sprintf("Steps so far: %d\n", len(j.Steps)))

	if last := j.CurrentStep(); last == nil && len(j.Steps) > 0 {
		prev := j.Steps[len(j.Steps)-1]
		b.WriteString(fmt.Sprintf("\nPrevious step: %s\n%s\nQuestion asked: %s\n", prev.Title, prev.Content, prev.Question))
	}

	recent := j.LastResponses(2)
	if len(recent) > 0 {
		b.WriteString("\nLearner's recent answers:\n")
		for _, r := range recent {
			b.WriteString(fmt.Sprintf("- Q: %s\n  A: %s (score %d)\n", r.Question, r.Answer, r.Score))
		}
	}

	b.WriteString(fmt.Sprintf(`
Instructions:
Write the single next step of this journey.
%s
It must build on the learner's answers above: acknowledge what they understood and go one idea deeper. End with exactly one question.`,
		profile.StepStyle))

	return b.String()
}
