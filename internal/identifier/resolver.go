// Package identifier picks the column used to match snapshot records to
// live records during a merge. The choice is recomputed on every attempt
// because the live schema is operator-extensible and can change between
// runs; nothing here is cached.
package identifier

import (
	"strings"

	"github.com/equipd/snapmerge/pkg/types"
)

// UniquenessThreshold is the minimum ratio of distinct values a candidate
// column must show within the snapshot before it qualifies as an
// identifier. Inherited as-is from the original system; tunable here.
const UniquenessThreshold = 0.8

// A rule pairs a human-readable name with a column-name predicate. Rules
// are tried strictly in table order, so generated surrogate keys win over
// business identifiers like serial numbers, which may repeat or be blank
// for incomplete equipment.
type rule struct {
	name  string
	match func(col string) bool
}

var priorityRules = []rule{
	{"exact index", func(c string) bool { return c == "index" }},
	{"exact id", func(c string) bool { return c == "id" }},
	{"exact uuid", func(c string) bool { return c == "uuid" }},
	{"suffix _id", func(c string) bool { return strings.HasSuffix(c, "_id") }},
	{"prefix id_", func(c string) bool { return strings.HasPrefix(c, "id_") }},
	{"contains uuid", func(c string) bool { return strings.Contains(c, "uuid") }},
	{"exact serial", func(c string) bool { return c == "serial" }},
	{"contains serial", func(c string) bool { return strings.Contains(c, "serial") }},
	{"exact _id", func(c string) bool { return c == "_id" }},
}

// Resolve returns the best identifier column for matching the snapshot
// against the live collection, or ok=false when no column qualifies. A
// false result is not an error: the planner falls back to treating every
// snapshot record as an insert.
func Resolve(snapshot, live []*types.Record, kind types.Collection) (string, bool) {
	if len(snapshot) == 0 {
		return "", false
	}

	snapCols := unionColumns(snapshot)

	// The select-options collection is keyed by its generated index token;
	// when the snapshot carries it, no heuristic search is needed.
	if kind == types.CollectionSelectOptions {
		for _, col := range snapCols {
			if col == types.IndexField {
				return col, true
			}
		}
	}

	// Candidates must exist on both sides. An empty live collection cannot
	// veto anything, so the snapshot's own columns stand in for it.
	liveSet := make(map[string]struct{})
	if len(live) == 0 {
		for _, col := range snapCols {
			liveSet[col] = struct{}{}
		}
	} else {
		for _, col := range unionColumns(live) {
			liveSet[col] = struct{}{}
		}
	}

	for _, r := range priorityRules {
		for _, col := range snapCols {
			if _, shared := liveSet[col]; !shared {
				continue
			}
			if !r.match(strings.ToLower(col)) {
				continue
			}
			if uniquenessRatio(snapshot, col) > UniquenessThreshold {
				return col, true
			}
		}
	}

	return "", false
}

// uniquenessRatio is the share of snapshot records carrying a distinct,
// non-empty value in the column.
func uniquenessRatio(records []*types.Record, col string) float64 {
	if len(records) == 0 {
		return 0
	}
	distinct := make(map[string]struct{}, len(records))
	for _, rec := range records {
		v := rec.Lookup(col)
		if v.IsEmpty() {
			continue
		}
		distinct[strings.TrimSpace(v.AsString())] = struct{}{}
	}
	return float64(len(distinct)) / float64(len(records))
}

// unionColumns returns every column seen across the records, preserving
// first-seen order so resolution is deterministic.
func unionColumns(records []*types.Record) []string {
	var cols []string
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, col := range rec.Fields() {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				cols = append(cols, col)
			}
		}
	}
	return cols
}
