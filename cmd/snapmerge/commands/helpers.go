package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	snaperrors "github.com/equipd/snapmerge/internal/errors"
	"github.com/equipd/snapmerge/internal/logger"
	"github.com/equipd/snapmerge/internal/merge"
	"github.com/equipd/snapmerge/internal/output"
	"github.com/equipd/snapmerge/internal/snapshot"
	"github.com/equipd/snapmerge/internal/store"
	"github.com/equipd/snapmerge/pkg/types"
)

const connectTimeout = 10 * time.Second

func newLogger() logger.Logger {
	return logger.New(viper.GetString("logging.level"))
}

func newRenderer() *output.Renderer {
	noColor := viper.GetBool("output.no_color") || !output.IsTerminal()
	return output.NewRenderer(output.Config{NoColor: noColor})
}

func outputFormat(cmd *cobra.Command) (output.OutputFormat, error) {
	format, _ := cmd.Flags().GetString("output")
	if format == "" || format == "table" {
		if v := viper.GetString("output.format"); v != "" {
			format = v
		}
	}
	return output.ParseOutputFormat(format)
}

func openSnapshotStore(log logger.Logger) (*snapshot.Store, error) {
	c := GetConfig()
	s, err := snapshot.NewStore(snapshot.Config{
		BaseDir:       c.Backup.Directory,
		RetentionDays: c.Backup.RetentionDays,
	}, log)
	if err != nil {
		return nil, snaperrors.BackupDirectoryError(c.Backup.Directory, err)
	}
	return s, nil
}

func connectStore(ctx context.Context) (store.Store, error) {
	c := GetConfig()
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	s, err := store.ConnectMongo(ctx, store.MongoConfig{
		URI:                     c.Mongo.URI,
		Database:                c.Mongo.Database,
		EquipmentCollection:     c.Mongo.EquipmentCollection,
		SelectOptionsCollection: c.Mongo.SelectOptionsCollection,
	})
	if err != nil {
		return nil, snaperrors.DatabaseConnectionError(c.Mongo.URI, err)
	}
	return s, nil
}

// resolveSnapshot picks the snapshot named by ref, or the most recent one
// when ref is empty.
func resolveSnapshot(snaps *snapshot.Store, ref string) (*types.SnapshotMeta, error) {
	if ref == "" {
		meta, ok := snaps.Latest()
		if !ok {
			return nil, snaperrors.SnapshotNotFoundError("(latest)")
		}
		return meta, nil
	}
	meta, err := snaps.Find(ref)
	if err != nil {
		return nil, snaperrors.SnapshotNotFoundError(ref)
	}
	return meta, nil
}

// buildPlans reads both collections out of the snapshot and plans each one
// against its live counterpart. The equipment plan always comes first.
func buildPlans(ctx context.Context, snaps *snapshot.Store, meta *types.SnapshotMeta, live store.Store, log logger.Logger) ([]*merge.Plan, error) {
	planner := merge.NewPlanner(log)

	var plans []*merge.Plan
	for _, kind := range []types.Collection{types.CollectionEquipment, types.CollectionSelectOptions} {
		snapRecords, err := snaps.Read(meta, kind)
		if err != nil {
			return nil, err
		}
		liveRecords, err := live.Collection(kind).FindAll(ctx, nil)
		if err != nil {
			return nil, err
		}
		plans = append(plans, planner.Plan(snapRecords, liveRecords, kind))
	}
	return plans, nil
}

// confirm prompts on stdin and accepts y/yes, case-insensitive.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
