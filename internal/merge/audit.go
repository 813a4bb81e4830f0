package merge

import (
	"sort"
	"strings"

	"github.com/equipd/snapmerge/internal/identifier"
	"github.com/equipd/snapmerge/pkg/types"
)

// DuplicateGroup is one identifier value shared by multiple records.
type DuplicateGroup struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// AuditReport flags identifier problems in a record set: duplicate values,
// blank values, and — when identifiers are numeric — the next free ID.
type AuditReport struct {
	Collection       types.Collection `json:"collection"`
	IdentifierColumn string           `json:"identifier_column,omitempty"`

	Total            int              `json:"total"`
	Duplicates       []DuplicateGroup `json:"duplicates,omitempty"`
	BlankIdentifiers int              `json:"blank_identifiers"`

	NextFreeID    int64 `json:"next_free_id,omitempty"`
	HasNumericIDs bool  `json:"has_numeric_ids"`

	Reason string `json:"reason,omitempty"`
}

// Clean reports whether the audit found nothing to flag.
func (r *AuditReport) Clean() bool {
	return r.Reason == "" && len(r.Duplicates) == 0 && r.BlankIdentifiers == 0
}

// Audit scans one collection's records for identifier hygiene. Duplicate
// groups are keyed the same way the planner matches records, so a CSV "3"
// and a live 3.0 count as the same identifier.
func Audit(records []*types.Record, kind types.Collection) *AuditReport {
	report := &AuditReport{Collection: kind, Total: len(records)}

	if len(records) == 0 {
		report.Reason = "collection contains no records"
		return report
	}

	idCol, ok := identifier.Resolve(records, records, kind)
	if !ok {
		report.Reason = "no qualifying identifier column"
		return report
	}
	report.IdentifierColumn = idCol

	counts := make(map[string]int, len(records))
	display := make(map[string]string, len(records))
	maxID := int64(0)

	for _, rec := range records {
		v := rec.Lookup(idCol)
		if v.IsEmpty() {
			report.BlankIdentifiers++
			continue
		}

		key := matchKey(v)
		counts[key]++
		if _, seen := display[key]; !seen {
			display[key] = strings.TrimSpace(v.AsString())
		}

		if n, isNum := v.AsNumber(); isNum && n == float64(int64(n)) {
			report.HasNumericIDs = true
			if int64(n) > maxID {
				maxID = int64(n)
			}
		}
	}

	for key, count := range counts {
		if count > 1 {
			report.Duplicates = append(report.Duplicates, DuplicateGroup{
				Value: display[key],
				Count: count,
			})
		}
	}
	sort.Slice(report.Duplicates, func(i, j int) bool {
		if report.Duplicates[i].Count != report.Duplicates[j].Count {
			return report.Duplicates[i].Count > report.Duplicates[j].Count
		}
		return report.Duplicates[i].Value < report.Duplicates[j].Value
	})

	if report.HasNumericIDs {
		report.NextFreeID = maxID + 1
	}

	return report
}
