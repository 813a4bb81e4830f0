package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/equipd/snapmerge/internal/output"
)

func newPreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "preview [snapshot]",
		Short:        "Show what a restore would change without writing",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Long: `Preview builds the merge plan for a snapshot against the live collections
and prints it without performing any writes: how many records would be
updated, inserted, or left unchanged, with a sample of each.

The snapshot argument is a metadata file name or a timestamp
(YYYYMMDD_HHMMSS); without it the most recent snapshot is used.`,
		Example: `  # Preview the latest snapshot
  snapmerge preview

  # Preview a specific capture
  snapmerge preview 20260824_120000

  # Machine-readable plan
  snapmerge preview -o json`,
		RunE: runPreview,
	}

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()
	renderer := newRenderer()

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}

	snaps, err := openSnapshotStore(log)
	if err != nil {
		return err
	}

	meta, err := resolveSnapshot(snaps, ref)
	if err != nil {
		return err
	}

	live, err := connectStore(ctx)
	if err != nil {
		return err
	}
	defer live.Close(ctx)

	plans, err := buildPlans(ctx, snaps, meta, live, log)
	if err != nil {
		return err
	}

	data, err := renderer.FormatPlanReport(&output.PlanReport{Snapshot: meta, Plans: plans}, format)
	if err != nil {
		return err
	}
	return renderer.WriteTo(data, os.Stdout)
}
