package quiz

import (
	"fmt"
	"strings"

	"stepquest/internal/ageband"
	"stepquest/internal/journey"
)

const quizSystemPrompt = `You write an end-of-journey quiz for a learner who just finished a guided tutoring session. Questions must cover the ground the session actually covered, at the learner's level.`

func buildQuizUserMessage(j *journey.Journey, priorContext []string, profile ageband.Profile) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Topic: %s\n", j.Topic))
	b.WriteString(fmt.Sprintf("Journey title: %s\n", j.Title))
	b.WriteString(fmt.Sprintf("Learner age: %s\n", profile.Band))

	b.WriteString("\nSteps covered:\n")
	for _, step := range j.Steps {
		b.WriteString(fmt.Sprintf("### %s\n%s\n", step.Title, step.Content))
	}

	if len(j.Responses) > 0 {
		b.WriteString("\nLearner's answers during the journey:\n")
		for _, r := range j.Responses {
			b.WriteString(fmt.Sprintf("- Q: %s\n  A: %s (score %d)\n", r.Question, r.Answer, r.Score))
		}
	}

	if len(priorContext) > 0 {
		b.WriteString("\nAdditional context from earlier sessions:\n")
		for _, c := range priorContext {
			b.WriteString(fmt.Sprintf("- %s\n", c))
		}
	}

	b.WriteString(fmt.Sprintf(`
Instructions:
Create a quiz with exactly %d questions.
Question format: %s.
Difficulty: %s.
Use %s. Revisit anything the learner struggled with above. For each question provide the correct answer and a one-sentence explanation. Finish with 2-4 learning objectives the quiz verifies.`,
		profile.QuizQuestionCount, profile.QuizQuestionType, profile.QuizComplexity, profile.Vocabulary))

	return b.String()
}
