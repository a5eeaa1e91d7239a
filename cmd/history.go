package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/NamanBalaji/modsync/internal/tui/components"
)

const historyWidth = 100

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sync runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Delete recorded runs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistoryRm,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show (0 for all)")
	historyCmd.AddCommand(historyRmCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	repo, err := openHistory()
	if err != nil {
		return err
	}
	defer repo.Close()

	runs, err := repo.FindAll()
	if err != nil {
		return err
	}

	if historyLimit > 0 && len(runs) > historyLimit {
		runs = runs[:historyLimit]
	}

	fmt.Fprintln(cmd.OutOrStdout(), components.RenderRunList(runs, historyWidth))

	return nil
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	repo, err := openHistory()
	if err != nil {
		return err
	}
	defer repo.Close()

	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", arg, err)
		}

		if err := repo.Delete(id); err != nil {
			return fmt.Errorf("failed to delete run %s: %w", id, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
	}

	return nil
}
