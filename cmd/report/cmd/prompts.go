package cmd

import (
	"fmt"

	"deep-research/internal/core/prompt"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List prompt template versions",
	RunE:  runPrompts,
}

func init() {
	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := prompt.NewStore(cfg.Prompt.Dir)
	if err != nil {
		return err
	}
	for _, v := range s.Versions() {
		marker := " "
		if v == cfg.Prompt.Version {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, v)
	}
	return nil
}
