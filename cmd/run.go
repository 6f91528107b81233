package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stepquest/internal/ageband"
	"stepquest/internal/evaluate"
	"stepquest/internal/journey"
	"stepquest/internal/llm"
	"stepquest/internal/pathgen"
	"stepquest/internal/progression"
	"stepquest/internal/quiz"
	"stepquest/internal/report"
)

// Idle sessions are dropped after two hours; plenty for one journey.
const (
	sessionTTL   = 2 * time.Hour
	sessionSweep = 10 * time.Minute
)

// runJourney wires the whole stack and drives one interactive journey
// over stdin.
func runJourney(cmd *cobra.Command, topic string) error {
	ctx := cmd.Context()

	band := ageband.DefaultBand
	if age, _ := cmd.Flags().GetString("age"); age != "" {
		band = ageband.Band(age)
		if !ageband.Known(band) {
			return fmt.Errorf("unknown age band %q (want 5-7, 8-10, 11-13, or 14-17)", age)
		}
	}

	logger, err := buildLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, ok := llm.DiscoverConfig()
	if !ok {
		return fmt.Errorf("no LLM provider configured: set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, or OPENROUTER_API_KEY")
	}
	provider, err := llm.NewProvider(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	ctrl := progression.NewController(progression.Deps{
		Store:     journey.NewStore(sessionTTL, sessionSweep),
		Paths:     pathgen.NewService(provider, pathgen.DefaultConfig()),
		Evaluator: evaluate.NewService(provider, evaluate.DefaultConfig(), logger),
		FollowUps: report.NewService(provider, report.DefaultConfig()),
		Quizzes:   quiz.NewService(provider, quiz.DefaultConfig()),
		Logger:    logger,
	})

	threadID := uuid.NewString()
	j, err := ctrl.Start(ctx, threadID, topic, band)
	if err != nil {
		return fmt.Errorf("start journey: %w", err)
	}

	fmt.Printf("\n%s\n", j.Title)
	fmt.Println("Answer each question, or use /next to move on and /quit to stop.")
	printStep(ctrl.GetCurrentStep(threadID))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit":
			res, err := ctrl.Abandon(threadID, "learner quit")
			if err != nil {
				return err
			}
			fmt.Printf("\nStopped at %d%% (%d steps done). Come back any time!\n",
				res.CompletionPercent, res.StepsCompleted)
			return nil

		case "/next":
			done, err := advanceOnce(ctx, ctrl, threadID)
			if err != nil {
				fmt.Println("Couldn't fetch the next step, try /next again.")
				logger.Debug("advance failed", zap.Error(err))
				continue
			}
			if done {
				return finishJourney(ctx, ctrl, threadID, scanner)
			}

		default:
			res, err := ctrl.SubmitAnswer(ctx, threadID, line)
			if err != nil {
				return err
			}
			fmt.Printf("\n%s\n", res.Message)
			if res.CanAbandon {
				fmt.Println("(You can type /quit to stop here.)")
			}
			if !res.CanProceed {
				continue
			}
			done, err := advanceOnce(ctx, ctrl, threadID)
			if err != nil {
				fmt.Println("Couldn't fetch the next step, try /next in a moment.")
				logger.Debug("advance failed", zap.Error(err))
				continue
			}
			if done {
				return finishJourney(ctx, ctrl, threadID, scanner)
			}
		}
	}
	return scanner.Err()
}

// advanceOnce moves the journey forward and prints the next step.
// Reports true once the journey completed.
func advanceOnce(ctx context.Context, ctrl *progression.Controller, threadID string) (bool, error) {
	res, err := ctrl.Advance(ctx, threadID)
	if err != nil {
		// The completion may have committed even if the payload
		// could not be fully assembled.
		if st := ctrl.GetStatus(threadID); st != nil && st.Status == journey.StatusCompleted {
			return true, nil
		}
		return false, err
	}
	if res.Type == progression.ResultCompletion {
		printCompletion(res.Completion)
		return true, nil
	}
	printStep(res.Step)
	return false, nil
}

func printStep(s *progression.StepView) {
	if s == nil {
		return
	}
	fmt.Printf("\nStep %d of %d — %s\n", s.StepNumber, s.TotalSteps, s.Title)
	fmt.Println(s.Content)
	fmt.Printf("\n%s\n", s.Question)
}

func printCompletion(c *progression.CompletionPayload) {
	if c == nil {
		return
	}
	fmt.Printf("\n%s\n", c.Message)
	fmt.Printf("\nSteps completed: %d\n", c.Summary.StepsCompleted)
	if c.Summary.AverageScore > 0 {
		fmt.Printf("Average score:   %.0f\n", c.Summary.AverageScore)
	}
	for _, s := range c.Summary.Strengths {
		fmt.Println("  ★", s)
	}
	for _, a := range c.Summary.Achievements {
		fmt.Println("  🏅", a)
	}
	if len(c.PracticeQuestions) > 0 {
		fmt.Println("\nKeep practicing:")
		for _, q := range c.PracticeQuestions {
			fmt.Println("  -", q)
		}
	}
	if len(c.FollowUpTopics) > 0 {
		fmt.Println("\nWhere to go next:")
		for _, topic := range c.FollowUpTopics {
			fmt.Printf("  - %s — %s\n", topic.Title, topic.Reason)
		}
	}
}

// finishJourney offers the end-of-journey quiz before exiting.
func finishJourney(ctx context.Context, ctrl *progression.Controller, threadID string, scanner *bufio.Scanner) error {
	fmt.Print("\nType quiz for a final quiz, or press Enter to finish: ")
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "quiz" {
		fmt.Println("Great work today!")
		return nil
	}

	q, err := ctrl.GenerateQuiz(ctx, threadID, nil)
	if err != nil {
		return fmt.Errorf("generate quiz: %w", err)
	}
	fmt.Printf("\n%s\n", q.Title)
	for i, question := range q.Questions {
		fmt.Printf("\n%d. %s\n", i+1, question.Text)
		for j, opt := range question.Options {
			fmt.Printf("   %c) %s\n", 'a'+j, opt)
		}
		fmt.Printf("   Answer: %s\n", question.Answer)
		if question.Explanation != "" {
			fmt.Printf("   Why:    %s\n", question.Explanation)
		}
	}
	if len(q.LearningObjectives) > 0 {
		fmt.Println("\nThis quiz covered:")
		for _, obj := range q.LearningObjectives {
			fmt.Println("  -", obj)
		}
	}
	return nil
}

// buildLogger returns a stderr logger, verbose with --debug.
func buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
