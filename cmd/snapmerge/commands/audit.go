package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/equipd/snapmerge/internal/logger"
	"github.com/equipd/snapmerge/internal/merge"
	"github.com/equipd/snapmerge/pkg/types"
)

func newAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "audit",
		Short:        "Scan the live collections for identifier problems",
		SilenceUsage: true,
		Long: `Audit checks identifier hygiene in the live collections: duplicate
identifier values, records with a blank identifier, and — when
identifiers are numeric — the next free ID.

Duplicates matter because the smart merge keys on the identifier: a
duplicated value means restore updates one of the copies and cannot say
which. Fix duplicates before relying on restore.

The command exits non-zero when problems are found, so it can gate a
cron job or CI check. Pass --snapshot to audit a snapshot instead of the
live collections.`,
		Example: `  snapmerge audit
  snapmerge audit --snapshot 20260824_120000
  snapmerge audit -o json`,
		RunE: runAudit,
	}

	cmd.Flags().String("snapshot", "", "audit this snapshot instead of the live collections")

	return cmd
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()
	renderer := newRenderer()

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	snapshotRef, _ := cmd.Flags().GetString("snapshot")

	readCollection, cleanup, err := auditSource(ctx, snapshotRef, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var reports []*merge.AuditReport
	problems := false
	for _, kind := range []types.Collection{types.CollectionEquipment, types.CollectionSelectOptions} {
		records, err := readCollection(kind)
		if err != nil {
			return err
		}
		report := merge.Audit(records, kind)
		if !report.Clean() {
			problems = true
		}
		reports = append(reports, report)
	}

	data, err := renderer.FormatAuditReports(reports, format)
	if err != nil {
		return err
	}
	if err := renderer.WriteTo(data, os.Stdout); err != nil {
		return err
	}

	if problems {
		return fmt.Errorf("audit found identifier problems")
	}
	return nil
}

type collectionReader func(types.Collection) ([]*types.Record, error)

// auditSource returns a reader over either the live collections or a
// snapshot, plus a cleanup for whichever connection it opened.
func auditSource(ctx context.Context, snapshotRef string, log logger.Logger) (collectionReader, func(), error) {
	if snapshotRef != "" {
		snaps, err := openSnapshotStore(log)
		if err != nil {
			return nil, nil, err
		}
		meta, err := resolveSnapshot(snaps, snapshotRef)
		if err != nil {
			return nil, nil, err
		}
		return func(kind types.Collection) ([]*types.Record, error) {
			return snaps.Read(meta, kind)
		}, func() {}, nil
	}

	live, err := connectStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return func(kind types.Collection) ([]*types.Record, error) {
		return live.Collection(kind).FindAll(ctx, nil)
	}, func() { live.Close(ctx) }, nil
}
