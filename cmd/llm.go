package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stepquest/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM provider configuration",
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show which provider and model would be used",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := llm.DiscoverConfig()
		if !ok {
			fmt.Println("No provider configured.")
			fmt.Println("Set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, or OPENROUTER_API_KEY.")
			return nil
		}
		provider, err := llm.NewProvider(cmd.Context(), cfg, zap.NewNop())
		if err != nil {
			return fmt.Errorf("create provider: %w", err)
		}
		fmt.Printf("Provider: %s\n", cfg.Provider)
		fmt.Printf("Model:    %s\n", provider.ModelID())
		return nil
	},
}

func init() {
	llmCmd.AddCommand(llmCheckCmd)
}
