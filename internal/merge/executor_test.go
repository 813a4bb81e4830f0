package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipd/snapmerge/internal/logger"
	"github.com/equipd/snapmerge/internal/store"
	"github.com/equipd/snapmerge/pkg/types"
)

func newExecutor() *Executor {
	return NewExecutor(logger.NewNop())
}

func TestApply_UpdatesInsertsAndUnchanged(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	mem.Seed(types.CollectionEquipment, []*types.Record{
		record("id", 1, "name", "B"),
		record("id", 3, "name", "same"),
	})
	coll := mem.Collection(types.CollectionEquipment)

	snapshot := []*types.Record{
		record("id", 1, "name", "A"),    // update
		record("id", 2, "name", "C"),    // insert
		record("id", 3, "name", "same"), // unchanged
	}
	live, err := coll.FindAll(ctx, nil)
	require.NoError(t, err)

	plan := newPlanner().Plan(snapshot, live, types.CollectionEquipment)
	result, err := newExecutor().Apply(ctx, plan, coll)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Unchanged)
	assert.Empty(t, result.Errors)

	rec, found, err := coll.FindOne(ctx, map[string]any{"id": 1})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "A", rec.Lookup("name").AsString())

	n, _ := coll.Count(ctx, nil)
	assert.Equal(t, int64(3), n)
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	mem.Seed(types.CollectionEquipment, []*types.Record{
		record("id", 1, "name", "B"),
	})
	coll := mem.Collection(types.CollectionEquipment)

	snapshot := []*types.Record{
		record("id", 1, "name", "A"),
		record("id", 2, "name", "C"),
	}

	live, err := coll.FindAll(ctx, nil)
	require.NoError(t, err)
	first := newPlanner().Plan(snapshot, live, types.CollectionEquipment)
	_, err = newExecutor().Apply(ctx, first, coll)
	require.NoError(t, err)

	// Second round against the merged state must be a fixed point.
	live, err = coll.FindAll(ctx, nil)
	require.NoError(t, err)
	second := newPlanner().Plan(snapshot, live, types.CollectionEquipment)

	assert.True(t, second.IsNoop(), "second plan should carry no writes")
	assert.Len(t, second.Unchanged, 2)

	result, err := newExecutor().Apply(ctx, second, coll)
	require.NoError(t, err)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Inserted)
}

func TestApply_ZeroMatchUpdateIsPerRecordError(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	mem.Seed(types.CollectionEquipment, []*types.Record{
		record("id", 2, "name", "B"),
	})
	coll := mem.Collection(types.CollectionEquipment)

	// Plan built against a stale live view: id 1 has since been deleted.
	plan := &Plan{
		Collection:       types.CollectionEquipment,
		IdentifierColumn: "id",
		Updates: []Update{
			{Live: record("id", 1, "name", "old"), Snapshot: record("id", 1, "name", "new")},
			{Live: record("id", 2, "name", "B"), Snapshot: record("id", 2, "name", "B2")},
		},
	}

	result, err := newExecutor().Apply(ctx, plan, coll)
	require.NoError(t, err, "a missed update must not abort the batch")

	assert.Equal(t, 1, result.Updated, "good record still applied")
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "update", result.Errors[0].Op)
	assert.Equal(t, "1", result.Errors[0].Identifier)
}

func TestApply_SelectOptionsInsertBackfillsIndex(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	coll := mem.Collection(types.CollectionSelectOptions)

	plan := &Plan{
		Collection:       types.CollectionSelectOptions,
		IdentifierColumn: types.IndexField,
		Inserts:          []*types.Record{record("option", "red")},
	}

	result, err := newExecutor().Apply(ctx, plan, coll)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	all, err := coll.FindAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Lookup(types.IndexField).IsEmpty())
}

func TestReplace_DeletesThenReinserts(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	mem.Seed(types.CollectionEquipment, []*types.Record{
		record("id", 1, "name", "old-1"),
		record("id", 2, "name", "old-2"),
		record("id", 3, "name", "old-3"),
	})
	coll := mem.Collection(types.CollectionEquipment)

	snapshot := []*types.Record{
		record("id", 10, "name", "new-1"),
		record("id", 11, "name", "new-2"),
	}

	inserted, err := newExecutor().Replace(ctx, snapshot, types.CollectionEquipment, coll)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	all, err := coll.FindAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new-1", all[0].Lookup("name").AsString())
}

func TestBackfillIndex_RepairsMissingTokens(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	mem.Seed(types.CollectionSelectOptions, []*types.Record{
		record("index", "tok-1", "option", "red"),
		record("index", "", "option", "blue"),
		record("option", "green"),
	})
	coll := mem.Collection(types.CollectionSelectOptions)

	fixed, err := newExecutor().BackfillIndex(ctx, coll)
	require.NoError(t, err)
	assert.Equal(t, 2, fixed)

	all, err := coll.FindAll(ctx, nil)
	require.NoError(t, err)
	for _, rec := range all {
		assert.False(t, rec.Lookup(types.IndexField).IsEmpty(),
			"record %q still missing index", rec.Lookup("option").AsString())
	}
}
