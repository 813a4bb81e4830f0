package merge

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/equipd/snapmerge/internal/logger"
	"github.com/equipd/snapmerge/internal/store"
	"github.com/equipd/snapmerge/pkg/types"
)

// Executor applies merge plans against a live collection. Each update is an
// independent point write; one bad record never blocks the rest of the
// batch. Value normalization to plain store types happens here, at the
// write boundary, via Record.Native.
type Executor struct {
	log logger.Logger
}

// NewExecutor returns an executor.
func NewExecutor(log logger.Logger) *Executor {
	return &Executor{log: log}
}

// Apply performs the plan's writes. Updates are keyed by the matched live
// record's identifier value so the filter carries the store's own value
// type. An update matching zero documents is recorded as a per-record error
// and the batch continues. Repeated Apply calls converge: records already
// merged classify as unchanged on the next plan.
func (e *Executor) Apply(ctx context.Context, plan *Plan, coll store.Collection) (*ApplyResult, error) {
	result := &ApplyResult{Unchanged: len(plan.Unchanged)}

	for _, upd := range plan.Updates {
		idVal := upd.Live.Lookup(plan.IdentifierColumn)
		filter := map[string]any{plan.IdentifierColumn: idVal.Native()}

		matched, err := coll.UpdateOne(ctx, filter, upd.Snapshot.Native())
		if err != nil {
			result.Errors = append(result.Errors, recordError("update", idVal.AsString(), err))
			e.log.WithField("identifier", idVal.AsString()).Error("update failed", err)
			continue
		}
		if matched == 0 {
			err := fmt.Errorf("update matched no live records")
			result.Errors = append(result.Errors, recordError("update", idVal.AsString(), err))
			e.log.WithField("identifier", idVal.AsString()).Warn("update matched no live records")
			continue
		}
		result.Updated++
	}

	for _, rec := range plan.Inserts {
		rec = prepareInsert(rec, plan.Collection)
		if err := coll.InsertOne(ctx, rec.Native()); err != nil {
			id := rec.Lookup(plan.IdentifierColumn).AsString()
			result.Errors = append(result.Errors, recordError("insert", id, err))
			e.log.WithField("identifier", id).Error("insert failed", err)
			continue
		}
		result.Inserted++
	}

	e.log.WithFields(map[string]interface{}{
		"collection": string(plan.Collection),
		"updated":    result.Updated,
		"inserted":   result.Inserted,
		"unchanged":  result.Unchanged,
		"errors":     len(result.Errors),
	}).Info("merge plan applied")

	return result, nil
}

// Replace deletes every live record and reinserts the whole snapshot.
//
// The delete and the insert are two separate store operations with no
// transaction around them: a failure between the two leaves the collection
// empty. Smart merge has no such window because it never performs a bulk
// delete. Callers must surface this risk before invoking replace mode.
func (e *Executor) Replace(ctx context.Context, records []*types.Record, kind types.Collection, coll store.Collection) (int, error) {
	deleted, err := coll.DeleteMany(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("clearing live collection: %w", err)
	}
	e.log.WithFields(map[string]interface{}{
		"collection": string(kind),
		"deleted":    deleted,
	}).Info("cleared live collection")

	docs := make([]map[string]any, len(records))
	for i, rec := range records {
		docs[i] = prepareInsert(rec, kind).Native()
	}
	if err := coll.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("reinserting snapshot after delete (collection now empty): %w", err)
	}

	return len(docs), nil
}

// BackfillIndex assigns a fresh index token to every live select-options
// record missing one. Best-effort repair: per-record failures are logged
// and counted, never fatal.
func (e *Executor) BackfillIndex(ctx context.Context, coll store.Collection) (int, error) {
	records, err := coll.FindAll(ctx, nil)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, rec := range records {
		if !rec.Lookup(types.IndexField).IsEmpty() {
			continue
		}
		filter := make(map[string]any)
		for _, field := range rec.Fields() {
			if v := rec.Lookup(field); !v.IsEmpty() {
				filter[field] = v.Native()
			}
		}
		if _, err := coll.UpdateOne(ctx, filter, map[string]any{types.IndexField: uuid.NewString()}); err != nil {
			e.log.Warn("index backfill write failed: " + err.Error())
			continue
		}
		fixed++
	}
	return fixed, nil
}

func recordError(op, id string, err error) RecordError {
	return RecordError{Op: op, Identifier: id, Err: err, Message: err.Error()}
}
