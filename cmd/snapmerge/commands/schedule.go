package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/equipd/snapmerge/internal/scheduler"
)

func newScheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "schedule",
		Short:        "Run periodic captures in the foreground",
		SilenceUsage: true,
		Long: `Schedule runs backup captures on a cron schedule until interrupted.
Each tick goes through the same throttle as 'snapmerge backup', so a
schedule that fires more often than the configured interval simply
skips the redundant captures.

The spec accepts standard five-field cron expressions and the @every
shorthand.`,
		Example: `  # Capture every 30 minutes (throttle still applies)
  snapmerge schedule --spec "@every 30m"

  # Capture at minute 0 of every hour
  snapmerge schedule --spec "0 * * * *"`,
		RunE: runSchedule,
	}

	cmd.Flags().String("spec", "@every 30m", "cron schedule for capture ticks")

	return cmd
}

func runSchedule(cmd *cobra.Command, args []string) error {
	log := newLogger()
	renderer := newRenderer()

	spec, _ := cmd.Flags().GetString("spec")

	snaps, err := openSnapshotStore(log)
	if err != nil {
		return err
	}

	// Fail fast on a bad URI or unreachable server instead of on the first
	// tick.
	probeCtx := context.Background()
	probe, err := connectStore(probeCtx)
	if err != nil {
		return err
	}
	probe.Close(probeCtx)

	interval := GetConfig().Backup.IntervalHours

	runner := scheduler.NewRunner(log)
	err = runner.Start(spec, func() {
		ctx := context.Background()
		src, err := connectStore(ctx)
		if err != nil {
			log.Error("scheduled capture: connect failed", err)
			return
		}
		defer src.Close(ctx)

		result, err := snaps.Capture(ctx, src, interval)
		if err != nil {
			log.Error("scheduled capture failed", err)
			return
		}
		log.Info(result.Message)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule spec %q: %w", spec, err)
	}
	defer runner.Stop()

	renderer.DisplayInfo(fmt.Sprintf("Capturing on schedule %q (interval throttle %.1fh). Ctrl-C to stop.", spec, interval))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	renderer.DisplayInfo("Scheduler stopped.")
	return nil
}
