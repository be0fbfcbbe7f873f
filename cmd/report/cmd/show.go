package cmd

import (
	"fmt"

	"deep-research/internal/store"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored report as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)

	showCmd.Flags().Bool("raw", false, "print only the report body without the header block")
}

func runShow(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetBool("raw")
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	rec, err := a.Service.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if raw {
		fmt.Fprintln(cmd.OutOrStdout(), rec.Document)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(store.Markdown(rec))
	return err
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	if err := a.Service.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}
