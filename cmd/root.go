package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stepquest [topic]",
	Short: "AI-guided learning journeys for curious kids and teens",
	Long: "StepQuest turns any topic into a step-by-step learning journey tuned\n" +
		"to the learner's age: a quick first step right away, a full path\n" +
		"generated in the background, graded answers, and a quiz at the end.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJourney(cmd, args[0])
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A .env in the working directory is a convenience for local runs;
	// real environment variables win.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging to stderr")
	rootCmd.Flags().String("age", "", "Learner age band: 5-7, 8-10, 11-13, or 14-17")

	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
