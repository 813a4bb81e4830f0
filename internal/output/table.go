package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/equipd/snapmerge/internal/merge"
	"github.com/equipd/snapmerge/pkg/types"
)

// TableFormatter handles table output formatting
type TableFormatter struct {
	config Config
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(config Config) *TableFormatter {
	return &TableFormatter{config: config}
}

// FormatPlanReport renders a merge preview: per-collection counts followed
// by sampled updates and inserts.
func (t *TableFormatter) FormatPlanReport(report *PlanReport) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Merge Preview\n")
	fmt.Fprintf(w, "=============\n")
	if report.Snapshot != nil {
		fmt.Fprintf(w, "Snapshot:\t%s\n", report.Snapshot.BackupTimestamp.Format(t.config.TimeFormat))
		fmt.Fprintf(w, "Day:\t%s\n", report.Snapshot.DayOfWeek)
	}
	fmt.Fprintf(w, "\n")

	for _, plan := range report.Plans {
		t.writePlan(w, plan)
	}

	w.Flush()
	return buf.Bytes(), nil
}

func (t *TableFormatter) writePlan(w *tabwriter.Writer, plan *merge.Plan) {
	fmt.Fprintf(w, "%s\n", plan.Collection)
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(plan.Collection)))
	if plan.IdentifierColumn != "" {
		fmt.Fprintf(w, "Identifier:\t%s\n", plan.IdentifierColumn)
	}
	if plan.Reason != "" {
		fmt.Fprintf(w, "Note:\t%s\n", plan.Reason)
	}
	fmt.Fprintf(w, "Updates:\t%d\n", len(plan.Updates))
	fmt.Fprintf(w, "Inserts:\t%d\n", len(plan.Inserts))
	fmt.Fprintf(w, "Unchanged:\t%d\n", len(plan.Unchanged))

	if samples := plan.UpdateSamples(); len(samples) > 0 {
		fmt.Fprintf(w, "\nSample updates (showing %d of %d):\n", len(samples), len(plan.Updates))
		for _, upd := range samples {
			id := upd.Snapshot.Lookup(plan.IdentifierColumn).AsString()
			for _, change := range upd.Changes {
				fmt.Fprintf(w, "  %s\t%s:\t%s\t-> %s\n",
					id,
					change.Field,
					truncateString(change.Old.String(), 30),
					truncateString(change.New.String(), 30),
				)
			}
		}
	}

	if samples := plan.InsertSamples(); len(samples) > 0 {
		fmt.Fprintf(w, "\nSample inserts (showing %d of %d):\n", len(samples), len(plan.Inserts))
		for _, rec := range samples {
			fmt.Fprintf(w, "  %s\n", truncateString(describeRecord(rec, plan.IdentifierColumn), 80))
		}
	}

	fmt.Fprintf(w, "\n")
}

// FormatSnapshotListing renders snapshots grouped by day, Sunday first.
func (t *TableFormatter) FormatSnapshotListing(listing map[string][]*types.SnapshotMeta) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	total := 0
	for _, metas := range listing {
		total += len(metas)
	}
	if total == 0 {
		return []byte("No snapshots found.\n"), nil
	}

	fmt.Fprintf(w, "Day\tTimestamp\tEquipment\tSelect Options\tHash\n")
	fmt.Fprintf(w, "---\t---------\t---------\t--------------\t----\n")
	for _, day := range types.DayNames {
		for _, meta := range listing[day] {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				day,
				meta.BackupTimestamp.Format(t.config.TimeFormat),
				meta.EquipmentCount,
				meta.SelectOptionsCount,
				truncateString(meta.BackupHash, 12),
			)
		}
	}
	fmt.Fprintf(w, "\n%d %s\n", total, plural(total, "snapshot"))

	w.Flush()
	return buf.Bytes(), nil
}

// FormatApplyReport renders the outcome of a restore.
func (t *TableFormatter) FormatApplyReport(report *ApplyReport) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Restore Result\n")
	fmt.Fprintf(w, "==============\n")
	if report.Snapshot != nil {
		fmt.Fprintf(w, "Snapshot:\t%s\n", report.Snapshot.BackupTimestamp.Format(t.config.TimeFormat))
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Collection\tUpdated\tInserted\tUnchanged\tErrors\n")
	fmt.Fprintf(w, "----------\t-------\t--------\t---------\t------\n")
	for _, kind := range []types.Collection{types.CollectionEquipment, types.CollectionSelectOptions} {
		result, ok := report.Results[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n",
			kind, result.Updated, result.Inserted, result.Unchanged, len(result.Errors))
	}

	for kind, result := range report.Results {
		if len(result.Errors) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s errors:\n", kind)
		for _, recErr := range result.Errors {
			fmt.Fprintf(w, "  %s\t%s:\t%s\n", recErr.Op, recErr.Identifier, recErr.Message)
		}
	}

	w.Flush()
	return buf.Bytes(), nil
}

// FormatComparisons renders snapshot-to-snapshot drift per collection.
func (t *TableFormatter) FormatComparisons(comparisons []*merge.Comparison) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Snapshot Comparison\n")
	fmt.Fprintf(w, "===================\n\n")

	for _, cmp := range comparisons {
		fmt.Fprintf(w, "%s\n", cmp.Collection)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(cmp.Collection)))
		if cmp.Reason != "" {
			fmt.Fprintf(w, "Note:\t%s\n", cmp.Reason)
		}
		if len(cmp.ColumnsAdded) > 0 {
			fmt.Fprintf(w, "Columns added:\t%s\n", strings.Join(cmp.ColumnsAdded, ", "))
		}
		if len(cmp.ColumnsRemoved) > 0 {
			fmt.Fprintf(w, "Columns removed:\t%s\n", strings.Join(cmp.ColumnsRemoved, ", "))
		}
		fmt.Fprintf(w, "Added:\t%d\n", cmp.Added)
		fmt.Fprintf(w, "Removed:\t%d\n", cmp.Removed)
		fmt.Fprintf(w, "Changed:\t%d\n", len(cmp.Changed))
		fmt.Fprintf(w, "Unchanged:\t%d\n", cmp.Unchanged)
		if len(cmp.AddedIDs) > 0 {
			fmt.Fprintf(w, "New record IDs:\t%s\n", strings.Join(cmp.AddedIDs, ", "))
		}
		if len(cmp.RemovedIDs) > 0 {
			fmt.Fprintf(w, "Deleted record IDs:\t%s\n", strings.Join(cmp.RemovedIDs, ", "))
		}

		if samples := cmp.ChangedSamples(); len(samples) > 0 {
			fmt.Fprintf(w, "\nChanged records (showing %d of %d):\n", len(samples), len(cmp.Changed))
			for _, rc := range samples {
				for _, change := range rc.Changes {
					fmt.Fprintf(w, "  %s\t%s:\t%s\t-> %s\n",
						rc.Identifier,
						change.Field,
						truncateString(change.Old.String(), 30),
						truncateString(change.New.String(), 30),
					)
				}
			}
		}
		fmt.Fprintf(w, "\n")
	}

	w.Flush()
	return buf.Bytes(), nil
}

// FormatAuditReports renders identifier hygiene findings per collection.
func (t *TableFormatter) FormatAuditReports(reports []*merge.AuditReport) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Identifier Audit\n")
	fmt.Fprintf(w, "================\n\n")

	for _, report := range reports {
		fmt.Fprintf(w, "%s\n", report.Collection)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(report.Collection)))
		fmt.Fprintf(w, "Records:\t%d\n", report.Total)
		if report.Reason != "" {
			fmt.Fprintf(w, "Note:\t%s\n\n", report.Reason)
			continue
		}
		fmt.Fprintf(w, "Identifier:\t%s\n", report.IdentifierColumn)
		fmt.Fprintf(w, "Blank identifiers:\t%d\n", report.BlankIdentifiers)

		if len(report.Duplicates) == 0 {
			fmt.Fprintf(w, "Duplicates:\tnone\n")
		} else {
			fmt.Fprintf(w, "\nDuplicate values:\n")
			fmt.Fprintf(w, "Value\tCount\n")
			fmt.Fprintf(w, "-----\t-----\n")
			for _, dup := range report.Duplicates {
				fmt.Fprintf(w, "%s\t%d\n", dup.Value, dup.Count)
			}
		}

		if report.HasNumericIDs {
			fmt.Fprintf(w, "Next free ID:\t%d\n", report.NextFreeID)
		}
		fmt.Fprintf(w, "\n")
	}

	w.Flush()
	return buf.Bytes(), nil
}

// FormatStatusReport renders the status command output.
func (t *TableFormatter) FormatStatusReport(report *StatusReport) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Status\n")
	fmt.Fprintf(w, "======\n")
	if report.ConfigFile != "" {
		fmt.Fprintf(w, "Config:\t%s\n", report.ConfigFile)
	}
	fmt.Fprintf(w, "MongoDB:\t%s/%s\n", report.MongoURI, report.Database)
	if report.Connected {
		fmt.Fprintf(w, "Connection:\tok\n")
	} else {
		fmt.Fprintf(w, "Connection:\tFAILED (%s)\n", report.ConnectError)
	}
	fmt.Fprintf(w, "Backup dir:\t%s\n", report.BackupDir)
	fmt.Fprintf(w, "Interval:\t%.1fh\n", report.IntervalHours)
	fmt.Fprintf(w, "Retention:\t%d days\n", report.RetentionDays)
	fmt.Fprintf(w, "Snapshots:\t%d (%d today)\n", report.TotalSnapshots, report.TodaySnapshots)
	if report.LatestSnapshot != nil {
		fmt.Fprintf(w, "Latest:\t%s (%s ago)\n",
			report.LatestSnapshot.Format(t.config.TimeFormat),
			time.Since(*report.LatestSnapshot).Round(time.Minute))
	} else {
		fmt.Fprintf(w, "Latest:\tnever\n")
	}

	w.Flush()
	return buf.Bytes(), nil
}

// describeRecord renders a record one-line for insert previews, identifier
// first when known.
func describeRecord(rec *types.Record, idCol string) string {
	var parts []string
	if idCol != "" {
		if v := rec.Lookup(idCol); !v.IsEmpty() {
			parts = append(parts, fmt.Sprintf("%s=%s", idCol, v.AsString()))
		}
	}
	for _, field := range rec.Fields() {
		if field == idCol {
			continue
		}
		v := rec.Lookup(field)
		if v.IsEmpty() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", field, v.AsString()))
		if len(parts) >= 4 {
			break
		}
	}
	return strings.Join(parts, " ")
}
