package evaluate

import (
	"fmt"
	"strings"

	"stepquest/internal/ageband"
	"stepquest/internal/journey"
)

const relevanceSystemPrompt = `You decide whether a learner's reply is a genuine attempt at the question they were asked. Be lenient: partial answers, wrong answers, and clumsy wording all count as attempts. Only replies that ignore the question entirely (changing the subject, chatting about something else) are not attempts.`

func buildRelevanceUserMessage(answer, question, topic string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Topic: %s\n", topic))
	b.WriteString(fmt.Sprintf("Question: %s\n", question))
	b.WriteString(fmt.Sprintf("Learner's reply: %s\n", answer))
	b.WriteString("\nIs this reply a genuine attempt at the question? When unsure, answer yes.")
	return b.String()
}

const feedbackSystemPrompt = `You grade a learner's answer and write short encouraging feedback. Scoring bands are fixed regardless of age: 80-100 fully correct, 50-79 partially correct, 0-49 incorrect.`

func buildFeedbackUserMessage(answer string, step journey.Step, topic string, profile ageband.Profile) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Topic: %s\n", topic))
	b.WriteString(fmt.Sprintf("Step: %s\n%s\n", step.Title, step.Content))
	b.WriteString(fmt.Sprintf("Question (%s): %s\n", step.QuestionType, step.Question))
	if step.ExpectedAnswer != "" {
		b.WriteString(fmt.Sprintf("Expected answer sketch: %s\n", step.ExpectedAnswer))
	}
	b.WriteString(fmt.Sprintf("Learner's answer: %s\n", answer))
	b.WriteString(fmt.Sprintf("\nLearner age: %s\n", profile.Band))
	b.WriteString(fmt.Sprintf("Feedback tone: %s\n", profile.FeedbackTone))
	b.WriteString(fmt.Sprintf("Vocabulary: %s\n", profile.Vocabulary))

	b.WriteString(`
Instructions:
1. Score the answer 0-100 using the fixed bands above.`)
	if profile.EffortCredit {
		b.WriteString(`
2. This learner is young: within a band, lean toward the higher end when real effort shows.`)
	} else {
		b.WriteString(`
2. Grade on substance. Credit correct reasoning even when the wording is rough.`)
	}
	b.WriteString(`
3. Write 1-3 sentences of feedback in the tone above. Start with what was right, then gently add what was missing.`)

	return b.String()
}
