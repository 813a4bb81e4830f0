package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "prune",
		Short:        "Delete snapshots older than the retention window",
		SilenceUsage: true,
		Long: `Prune deletes snapshot CSVs and metadata whose file modification time is
older than the retention window. Pruning also happens automatically as
part of every backup; this command exists for manual cleanup and for
testing a shorter window with --days.`,
		Example: `  # Prune with the configured retention
  snapmerge prune

  # Prune everything older than 3 days
  snapmerge prune --days 3`,
		RunE: runPrune,
	}

	cmd.Flags().Int("days", 0, "retention in days (default: configured value)")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	log := newLogger()
	renderer := newRenderer()

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = GetConfig().Backup.RetentionDays
	}

	snaps, err := openSnapshotStore(log)
	if err != nil {
		return err
	}

	pruned := snaps.Prune(days)
	if pruned == 0 {
		renderer.DisplayInfo(fmt.Sprintf("Nothing to prune (retention %d days).", days))
	} else {
		renderer.DisplaySuccess(fmt.Sprintf("Pruned %d expired snapshot files (retention %d days).", pruned, days))
	}
	return nil
}
