package commands

import (
	"os"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List snapshots grouped by weekday",
		SilenceUsage: true,
		Long: `List shows every snapshot under the backup directory, grouped by the
weekday folder it was captured into, newest first within each day.`,
		Example: `  snapmerge list
  snapmerge list -o json`,
		RunE: runList,
	}

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
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

	listing, err := snaps.List()
	if err != nil {
		return err
	}

	data, err := renderer.FormatSnapshotListing(listing, format)
	if err != nil {
		return err
	}
	return renderer.WriteTo(data, os.Stdout)
}
