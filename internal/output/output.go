// Package output renders plans, snapshot listings, and reports for the
// terminal. Every renderer supports table, json, and yaml formats; table is
// the human default, the other two exist for scripting.
package output

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/equipd/snapmerge/internal/merge"
	"github.com/equipd/snapmerge/pkg/types"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// Config holds output rendering settings
type Config struct {
	NoColor    bool
	TimeFormat string
}

// ParseOutputFormat parses a string into OutputFormat
func ParseOutputFormat(format string) (OutputFormat, error) {
	switch format {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", format)
	}
}

// IsTerminal reports whether stdout is attached to a terminal. Piped output
// gets no color regardless of flags.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// PlanReport bundles the per-collection plans of one preview or restore run.
type PlanReport struct {
	Snapshot *types.SnapshotMeta `json:"snapshot" yaml:"snapshot"`
	Plans    []*merge.Plan       `json:"plans" yaml:"plans"`
}

// ApplyReport bundles the per-collection outcomes of one restore run.
type ApplyReport struct {
	Snapshot *types.SnapshotMeta                     `json:"snapshot" yaml:"snapshot"`
	Results  map[types.Collection]*merge.ApplyResult `json:"results" yaml:"results"`
}

// StatusReport summarizes configuration and store health for the status
// command.
type StatusReport struct {
	ConfigFile     string     `json:"config_file,omitempty" yaml:"config_file,omitempty"`
	MongoURI       string     `json:"mongo_uri" yaml:"mongo_uri"`
	Database       string     `json:"database" yaml:"database"`
	Connected      bool       `json:"connected" yaml:"connected"`
	ConnectError   string     `json:"connect_error,omitempty" yaml:"connect_error,omitempty"`
	BackupDir      string     `json:"backup_dir" yaml:"backup_dir"`
	IntervalHours  float64    `json:"interval_hours" yaml:"interval_hours"`
	RetentionDays  int        `json:"retention_days" yaml:"retention_days"`
	TotalSnapshots int        `json:"total_snapshots" yaml:"total_snapshots"`
	TodaySnapshots int        `json:"today_snapshots" yaml:"today_snapshots"`
	LatestSnapshot *time.Time `json:"latest_snapshot,omitempty" yaml:"latest_snapshot,omitempty"`
}

// truncateString truncates a string to the specified length
func truncateString(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func plural(count int, singular string) string {
	if count == 1 {
		return singular
	}
	return singular + "s"
}
