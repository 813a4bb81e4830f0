package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/equipd/snapmerge/internal/merge"
	"github.com/equipd/snapmerge/pkg/types"
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "compare <older> <newer>",
		Short:        "Diff two snapshots against each other",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		Long: `Compare shows how the collections drifted between two snapshots:
records added, removed, or changed, keyed by the identifier column. No
database connection is needed; both sides come from disk.`,
		Example: `  snapmerge compare 20260820_080000 20260824_120000
  snapmerge compare backup_metadata_20260820_080000.json backup_metadata_20260824_120000.json`,
		RunE: runCompare,
	}

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	log := newLogger()
	renderer := newRenderer()

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	snaps, err := openSnapshotStore(log)
	if err != nil {
		return err
	}

	older, err := resolveSnapshot(snaps, args[0])
	if err != nil {
		return err
	}
	newer, err := resolveSnapshot(snaps, args[1])
	if err != nil {
		return err
	}

	var comparisons []*merge.Comparison
	for _, kind := range []types.Collection{types.CollectionEquipment, types.CollectionSelectOptions} {
		olderRecords, err := snaps.Read(older, kind)
		if err != nil {
			return err
		}
		newerRecords, err := snaps.Read(newer, kind)
		if err != nil {
			return err
		}
		comparisons = append(comparisons, merge.Compare(olderRecords, newerRecords, kind))
	}

	data, err := renderer.FormatComparisons(comparisons, format)
	if err != nil {
		return err
	}
	return renderer.WriteTo(data, os.Stdout)
}
