package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	snaperrors "github.com/equipd/snapmerge/internal/errors"
	"github.com/equipd/snapmerge/internal/output"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Show configuration and store health",
		SilenceUsage: true,
		Long: `Status reports the effective configuration, whether the database is
reachable, and what snapshots exist. Useful as a first check when backup
or restore misbehaves.`,
		Example: `  snapmerge status
  snapmerge status -o json`,
		RunE: runStatus,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()
	renderer := newRenderer()

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	c := GetConfig()
	report := &output.StatusReport{
		ConfigFile:    viper.ConfigFileUsed(),
		MongoURI:      c.Mongo.URI,
		Database:      c.Mongo.Database,
		BackupDir:     c.Backup.Directory,
		IntervalHours: c.Backup.IntervalHours,
		RetentionDays: c.Backup.RetentionDays,
	}

	if live, err := connectStore(ctx); err != nil {
		// The wrapped user error carries a multi-line help text; status
		// wants just the cause.
		if uerr, ok := err.(*snaperrors.UserError); ok && uerr.Cause != "" {
			report.ConnectError = uerr.Cause
		} else {
			report.ConnectError = err.Error()
		}
	} else {
		report.Connected = true
		live.Close(ctx)
	}

	if snaps, err := openSnapshotStore(log); err == nil {
		today := time.Now()
		if listing, err := snaps.List(); err == nil {
			for _, metas := range listing {
				report.TotalSnapshots += len(metas)
				for _, meta := range metas {
					y1, m1, d1 := meta.BackupTimestamp.Date()
					y2, m2, d2 := today.Date()
					if y1 == y2 && m1 == m2 && d1 == d2 {
						report.TodaySnapshots++
					}
				}
			}
		}
		if latest, ok := snaps.Latest(); ok {
			ts := latest.BackupTimestamp
			report.LatestSnapshot = &ts
		}
	}

	data, err := renderer.FormatStatusReport(report, format)
	if err != nil {
		return err
	}
	return renderer.WriteTo(data, os.Stdout)
}
