package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a report for a document",
	Long: `Extract the document, send it chunk by chunk to the model and store the
assembled Markdown report.

Examples:
  # Generate from a local PDF
  report generate --file paper.pdf --question "What are the key findings?"

  # Generate from an object in the configured bucket and write the report to a file
  report generate --file s3://papers/2024/paper.pdf --question "Summarize" --out report.md`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("file", "", "document path (.pdf, .txt, .md) or s3:// URL")
	generateCmd.Flags().String("question", "", "research question (1-1000 characters)")
	generateCmd.Flags().String("out", "", "also write the Markdown report to this path")
	generateCmd.Flags().Bool("metadata", false, "print run metadata as JSON")
	_ = generateCmd.MarkFlagRequired("file")
	_ = generateCmd.MarkFlagRequired("question")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	question, _ := cmd.Flags().GetString("question")
	out, _ := cmd.Flags().GetString("out")
	showMeta, _ := cmd.Flags().GetBool("metadata")

	if n := len([]rune(question)); n == 0 || n > 1000 {
		return fmt.Errorf("question must be 1-1000 characters, got %d", n)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	rec, err := a.Service.Generate(ctx, file, question)
	if err != nil {
		return err
	}

	if out != "" {
		if err := os.WriteFile(out, []byte(rec.Document), 0o644); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), rec.Document)
	}
	if showMeta {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec.Metadata); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "report %s: %d/%d chunks processed in %.2fs\n",
		rec.ID, rec.Metadata.ProcessedChunks, rec.Metadata.TotalChunks, rec.Metadata.ProcessingTime)
	return nil
}
