// Package merge classifies snapshot records against the live collection
// (plan) and applies the resulting writes (apply/replace). Planning never
// mutates anything; repeated plan/apply rounds converge to a fixed point
// because unchanged records cost nothing.
package merge

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/equipd/snapmerge/internal/differ"
	"github.com/equipd/snapmerge/internal/identifier"
	"github.com/equipd/snapmerge/internal/logger"
	"github.com/equipd/snapmerge/pkg/types"
)

// Planner builds merge plans. It holds no state beyond a logger; every call
// resolves the identifier column fresh because the live schema can change
// between runs.
type Planner struct {
	log logger.Logger
}

// NewPlanner returns a planner.
func NewPlanner(log logger.Logger) *Planner {
	return &Planner{log: log}
}

// Plan classifies every snapshot record as update, insert, or unchanged.
// Degraded inputs produce a plan with a Reason rather than an error: an
// empty snapshot yields a zero-count plan, an empty live collection yields
// an all-insert plan, and a missing identifier column yields an all-insert
// plan — without a stable key an "update" could silently overwrite the
// wrong record, so duplicate-insert risk is preferred and surfaced to the
// operator.
func (p *Planner) Plan(snapshot, live []*types.Record, kind types.Collection) *Plan {
	plan := &Plan{Collection: kind}

	if len(snapshot) == 0 {
		plan.Reason = "snapshot contains no records"
		return plan
	}

	idCol, ok := identifier.Resolve(snapshot, live, kind)
	if !ok {
		plan.Reason = "no qualifying identifier column; every snapshot record is treated as an insert and duplicates may result"
		plan.Inserts = prepareInserts(snapshot, kind)
		p.log.WithFields(map[string]interface{}{
			"collection": string(kind),
			"inserts":    len(plan.Inserts),
		}).Warn("merge plan has no identifier column")
		return plan
	}
	plan.IdentifierColumn = idCol

	if len(live) == 0 {
		plan.Reason = "live collection is empty"
	}

	liveByID := make(map[string]*types.Record, len(live))
	for _, rec := range live {
		v := rec.Lookup(idCol)
		if v.IsEmpty() {
			continue
		}
		key := matchKey(v)
		// First record wins on duplicate live identifiers, matching the
		// point-write semantics of the executor.
		if _, exists := liveByID[key]; !exists {
			liveByID[key] = rec
		}
	}

	for _, rec := range snapshot {
		idVal := rec.Lookup(idCol)
		if idVal.IsEmpty() {
			plan.Inserts = append(plan.Inserts, prepareInsert(rec, kind))
			continue
		}

		liveRec, found := liveByID[matchKey(idVal)]
		if !found {
			plan.Inserts = append(plan.Inserts, rec)
			continue
		}

		if changes := differ.Diff(liveRec, rec); !changes.IsEmpty() {
			plan.Updates = append(plan.Updates, Update{Live: liveRec, Snapshot: rec, Changes: changes})
		} else {
			plan.Unchanged = append(plan.Unchanged, rec)
		}
	}

	p.log.WithFields(map[string]interface{}{
		"collection": string(kind),
		"identifier": idCol,
		"updates":    len(plan.Updates),
		"inserts":    len(plan.Inserts),
		"unchanged":  len(plan.Unchanged),
	}).Debug("merge plan built")

	return plan
}

// prepareInserts readies a whole snapshot for insertion.
func prepareInserts(records []*types.Record, kind types.Collection) []*types.Record {
	out := make([]*types.Record, len(records))
	for i, rec := range records {
		out[i] = prepareInsert(rec, kind)
	}
	return out
}

// prepareInsert backfills the generated index token for collections that
// require one, on a clone so the caller's snapshot stays untouched. The
// executor performs the same check before each write, covering plans built
// elsewhere.
func prepareInsert(rec *types.Record, kind types.Collection) *types.Record {
	if !kind.RequiresGeneratedIndex() {
		return rec
	}
	if !rec.Lookup(types.IndexField).IsEmpty() {
		return rec
	}
	clone := rec.Clone()
	clone.Set(types.IndexField, types.String(uuid.NewString()))
	return clone
}

// matchKey canonicalizes an identifier value for lookup: numeric readings
// collapse to one key so a CSV "3" finds a live 3.0, everything else keys
// on the trimmed string.
func matchKey(v types.Value) string {
	if n, ok := v.AsNumber(); ok {
		return "n:" + strconv.FormatFloat(n, 'f', -1, 64)
	}
	return "s:" + strings.TrimSpace(v.AsString())
}
