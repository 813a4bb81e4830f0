package commands

import (
	"context"

	"github.com/spf13/cobra"
)

func newBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "backup",
		Short:        "Capture a snapshot of the live collections",
		SilenceUsage: true,
		Long: `Backup exports the equipment and select-options collections to a pair of
timestamped CSV files plus a metadata JSON in the current weekday's folder.

Captures are throttled: if the most recent snapshot is younger than the
configured interval the command exits without writing. Use --force to
capture regardless. Expired snapshots are pruned as part of every capture.`,
		Example: `  # Throttled capture (skipped when a recent snapshot exists)
  snapmerge backup

  # Capture no matter how recent the last snapshot is
  snapmerge backup --force`,
		RunE: runBackup,
	}

	cmd.Flags().Bool("force", false, "capture even if a recent snapshot exists")

	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()
	renderer := newRenderer()

	snaps, err := openSnapshotStore(log)
	if err != nil {
		return err
	}

	src, err := connectStore(ctx)
	if err != nil {
		return err
	}
	defer src.Close(ctx)

	interval := GetConfig().Backup.IntervalHours
	if force, _ := cmd.Flags().GetBool("force"); force {
		interval = 0
	}

	result, err := snaps.Capture(ctx, src, interval)
	if err != nil {
		return err
	}

	if result.Created {
		renderer.DisplaySuccess(result.Message)
	} else {
		renderer.DisplayInfo(result.Message)
	}
	return nil
}
