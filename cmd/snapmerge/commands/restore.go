package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/equipd/snapmerge/internal/merge"
	"github.com/equipd/snapmerge/internal/output"
	"github.com/equipd/snapmerge/internal/snapshot"
	"github.com/equipd/snapmerge/internal/store"
	"github.com/equipd/snapmerge/pkg/types"
)

func newRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "restore [snapshot]",
		Short:        "Merge a snapshot back into the live collections",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Long: `Restore merges a snapshot into the live collections. In the default
smart mode records are matched by identifier: changed records are updated
in place, records missing from the live collection are inserted, and
records already in sync are skipped. Nothing is deleted.

Replace mode (--mode replace) deletes every live record first and
reinserts the snapshot wholesale. The delete and the insert are separate
operations: a failure between them leaves the collection empty. Only use
replace when live data is known to be garbage.

Failed individual writes are reported per record; the rest of the batch
still goes through.`,
		Example: `  # Smart-merge the latest snapshot (asks for confirmation)
  snapmerge restore

  # Restore a specific capture without prompting
  snapmerge restore 20260824_120000 --yes

  # Wipe and reload from the snapshot
  snapmerge restore --mode replace`,
		RunE: runRestore,
	}

	cmd.Flags().String("mode", "smart", "restore mode (smart, replace)")
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()
	renderer := newRenderer()

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	mode, _ := cmd.Flags().GetString("mode")
	if mode != "smart" && mode != "replace" {
		return fmt.Errorf("unknown restore mode %q (smart, replace)", mode)
	}
	skipConfirm, _ := cmd.Flags().GetBool("yes")

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

	if mode == "replace" {
		return runReplace(ctx, snaps, meta, live, skipConfirm)
	}

	plans, err := buildPlans(ctx, snaps, meta, live, log)
	if err != nil {
		return err
	}

	totalWrites := 0
	for _, plan := range plans {
		totalWrites += len(plan.Updates) + len(plan.Inserts)
	}
	if totalWrites == 0 {
		renderer.DisplayInfo("Nothing to do: live collections already match the snapshot.")
		return nil
	}

	if !skipConfirm {
		summary := fmt.Sprintf("Apply %d %s from snapshot %s?",
			totalWrites, pluralWrites(totalWrites), meta.BackupTimestamp.Format("2006-01-02 15:04:05"))
		if !confirm(summary) {
			renderer.DisplayInfo("Restore cancelled.")
			return nil
		}
	}

	executor := merge.NewExecutor(log)
	results := make(map[types.Collection]*merge.ApplyResult, len(plans))
	for _, plan := range plans {
		result, err := executor.Apply(ctx, plan, live.Collection(plan.Collection))
		if err != nil {
			return err
		}
		results[plan.Collection] = result
	}

	data, err := renderer.FormatApplyReport(&output.ApplyReport{Snapshot: meta, Results: results}, format)
	if err != nil {
		return err
	}
	if err := renderer.WriteTo(data, os.Stdout); err != nil {
		return err
	}

	for _, result := range results {
		if len(result.Errors) > 0 {
			return fmt.Errorf("restore finished with %d failed records", countErrors(results))
		}
	}
	return nil
}

func runReplace(ctx context.Context, snaps *snapshot.Store, meta *types.SnapshotMeta, live store.Store, skipConfirm bool) error {
	log := newLogger()
	renderer := newRenderer()

	if !skipConfirm {
		renderer.DisplayWarning("Replace mode DELETES every live record before reinserting the snapshot.")
		renderer.DisplayWarning("A failure between the delete and the insert leaves the collection empty.")
		if !confirm("Continue with replace") {
			renderer.DisplayInfo("Restore cancelled.")
			return nil
		}
	}

	executor := merge.NewExecutor(log)
	for _, kind := range []types.Collection{types.CollectionEquipment, types.CollectionSelectOptions} {
		records, err := snaps.Read(meta, kind)
		if err != nil {
			return err
		}
		inserted, err := executor.Replace(ctx, records, kind, live.Collection(kind))
		if err != nil {
			return err
		}
		renderer.DisplaySuccess(fmt.Sprintf("%s: replaced with %d records", kind, inserted))
	}
	return nil
}

func pluralWrites(n int) string {
	if n == 1 {
		return "write"
	}
	return "writes"
}

func countErrors(results map[types.Collection]*merge.ApplyResult) int {
	total := 0
	for _, result := range results {
		total += len(result.Errors)
	}
	return total
}
