// Package scheduler decides when captures happen. The decision functions
// are pure so both the CLI and the cron runner share one clock policy.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/equipd/snapmerge/internal/logger"
)

// ShouldCaptureNow reports whether enough wall-clock time has elapsed since
// the last capture to justify a new one. A zero last-capture time always
// allows capture. This throttle is what makes frequent invocation (every
// page load, every cron tick) safe.
func ShouldCaptureNow(lastCapture, now time.Time, intervalHours float64) bool {
	if lastCapture.IsZero() {
		return true
	}
	interval := time.Duration(intervalHours * float64(time.Hour))
	return now.Sub(lastCapture) >= interval
}

// Expired reports whether a snapshot file with the given modification time
// falls outside the retention window.
func Expired(modTime, now time.Time, retentionDays int) bool {
	cutoff := now.AddDate(0, 0, -retentionDays)
	return modTime.Before(cutoff)
}

// Runner executes a capture job on a cron schedule. The job itself still
// applies the interval throttle, so an aggressive cron spec cannot produce
// redundant snapshots.
type Runner struct {
	cron *cron.Cron
	log  logger.Logger
}

// NewRunner returns an idle runner.
func NewRunner(log logger.Logger) *Runner {
	return &Runner{log: log}
}

// Start schedules the job under the given cron spec (standard 5-field
// syntax) and begins running it. Returns an error for an invalid spec.
func (r *Runner) Start(spec string, job func()) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, job); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	r.log.WithField("spec", spec).Info("capture schedule started")
	return nil
}

// Stop halts the schedule. Safe to call on an idle runner.
func (r *Runner) Stop() {
	if r.cron != nil {
		r.cron.Stop()
		r.cron = nil
	}
}
