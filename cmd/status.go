package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/NamanBalaji/modsync/internal/repository"
	"github.com/NamanBalaji/modsync/internal/tui/components"
)

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show the outcome of the last run, or of the given run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	repo, err := openHistory()
	if err != nil {
		return err
	}
	defer repo.Close()

	var rec *repository.RunRecord

	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}

		rec, err = repo.Find(id)
		if err != nil {
			return err
		}
	} else {
		rec, err = repo.Last()
		if errors.Is(err, repository.ErrRunNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
			return nil
		}

		if err != nil {
			return err
		}
	}

	printRecord(cmd.OutOrStdout(), rec)

	return nil
}

func printRecord(w io.Writer, rec *repository.RunRecord) {
	fmt.Fprintf(w, "run:         %s\n", rec.ID)
	fmt.Fprintf(w, "status:      %s\n", components.StatusLabel(rec.Final.Status))
	fmt.Fprintf(w, "destination: %s\n", rec.Destination)

	if rec.ManifestURL != "" {
		fmt.Fprintf(w, "manifest:    %s\n", rec.ManifestURL)
	}

	fmt.Fprintf(w, "started:     %s (%s)\n", rec.StartedAt.Format("2006-01-02 15:04:05"), humanize.Time(rec.StartedAt))
	fmt.Fprintf(w, "took:        %s\n", components.FormatDuration(rec.Duration()))
	fmt.Fprintf(w, "files:       %d/%d verified\n", rec.Final.VerifiedCompleted, rec.Final.FilesTotal)

	if rec.Error != "" {
		fmt.Fprintf(w, "error:       %s\n", rec.Error)
	}
}
