package merge

import (
	"sort"

	"github.com/equipd/snapmerge/internal/differ"
	"github.com/equipd/snapmerge/internal/identifier"
	"github.com/equipd/snapmerge/pkg/types"
)

// RecordChange names one record that differs between two snapshots.
type RecordChange struct {
	Identifier string           `json:"identifier"`
	Changes    differ.ChangeSet `json:"changes"`
}

// Comparison summarizes how one snapshot drifted from another.
type Comparison struct {
	Collection       types.Collection `json:"collection"`
	IdentifierColumn string           `json:"identifier_column,omitempty"`

	ColumnsAdded   []string `json:"columns_added,omitempty"`
	ColumnsRemoved []string `json:"columns_removed,omitempty"`

	Added     int            `json:"added"`
	Removed   int            `json:"removed"`
	Changed   []RecordChange `json:"changed"`
	Unchanged int            `json:"unchanged"`

	// Sampled identifiers of records present on only one side.
	AddedIDs   []string `json:"added_ids,omitempty"`
	RemovedIDs []string `json:"removed_ids,omitempty"`

	// Reason is set when the comparison could not key records by identifier
	// and fell back to counts only.
	Reason string `json:"reason,omitempty"`
}

// ChangedSamples returns at most sampleLimit changed records for display.
func (c *Comparison) ChangedSamples() []RecordChange {
	if len(c.Changed) > sampleLimit {
		return c.Changed[:sampleLimit]
	}
	return c.Changed
}

// Compare diffs two snapshots of one collection, keyed by the resolved
// identifier column. "Added" counts records present only in the newer
// snapshot, "Removed" those present only in the older one. Without a
// qualifying identifier the result degrades to raw counts with a Reason.
func Compare(older, newer []*types.Record, kind types.Collection) *Comparison {
	cmp := &Comparison{Collection: kind}
	cmp.ColumnsAdded, cmp.ColumnsRemoved = columnDelta(older, newer)

	idCol, ok := identifier.Resolve(older, newer, kind)
	if !ok {
		cmp.Added = len(newer)
		cmp.Removed = len(older)
		cmp.Reason = "no qualifying identifier column; record counts only"
		return cmp
	}
	cmp.IdentifierColumn = idCol

	olderByID := keyByIdentifier(older, idCol)
	newerByID := keyByIdentifier(newer, idCol)

	for key, newRec := range newerByID {
		oldRec, found := olderByID[key]
		if !found {
			cmp.Added++
			cmp.AddedIDs = append(cmp.AddedIDs, newRec.Lookup(idCol).AsString())
			continue
		}
		if changes := differ.Diff(oldRec, newRec); !changes.IsEmpty() {
			cmp.Changed = append(cmp.Changed, RecordChange{
				Identifier: newRec.Lookup(idCol).AsString(),
				Changes:    changes,
			})
		} else {
			cmp.Unchanged++
		}
	}

	for key, oldRec := range olderByID {
		if _, found := newerByID[key]; !found {
			cmp.Removed++
			cmp.RemovedIDs = append(cmp.RemovedIDs, oldRec.Lookup(idCol).AsString())
		}
	}

	// Map iteration order is random; keep the report stable.
	sort.Slice(cmp.Changed, func(i, j int) bool {
		return cmp.Changed[i].Identifier < cmp.Changed[j].Identifier
	})
	sort.Strings(cmp.AddedIDs)
	sort.Strings(cmp.RemovedIDs)
	if len(cmp.AddedIDs) > sampleLimit {
		cmp.AddedIDs = cmp.AddedIDs[:sampleLimit]
	}
	if len(cmp.RemovedIDs) > sampleLimit {
		cmp.RemovedIDs = cmp.RemovedIDs[:sampleLimit]
	}

	return cmp
}

// columnDelta reports columns present on only one side, in first-seen order.
func columnDelta(older, newer []*types.Record) (added, removed []string) {
	olderCols := columnSet(older)
	newerCols := columnSet(newer)

	for _, rec := range newer {
		for _, col := range rec.Fields() {
			if _, ok := olderCols[col]; !ok {
				added = appendOnce(added, col)
			}
		}
	}
	for _, rec := range older {
		for _, col := range rec.Fields() {
			if _, ok := newerCols[col]; !ok {
				removed = appendOnce(removed, col)
			}
		}
	}
	return added, removed
}

func columnSet(records []*types.Record) map[string]struct{} {
	out := make(map[string]struct{})
	for _, rec := range records {
		for _, col := range rec.Fields() {
			out[col] = struct{}{}
		}
	}
	return out
}

func appendOnce(cols []string, col string) []string {
	for _, c := range cols {
		if c == col {
			return cols
		}
	}
	return append(cols, col)
}

func keyByIdentifier(records []*types.Record, idCol string) map[string]*types.Record {
	out := make(map[string]*types.Record, len(records))
	for _, rec := range records {
		v := rec.Lookup(idCol)
		if v.IsEmpty() {
			continue
		}
		key := matchKey(v)
		if _, exists := out[key]; !exists {
			out[key] = rec
		}
	}
	return out
}
