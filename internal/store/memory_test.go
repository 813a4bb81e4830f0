package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipd/snapmerge/pkg/types"
)

func TestMemoryCollection_CRUD(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection(types.CollectionEquipment)

	require.NoError(t, coll.InsertOne(ctx, map[string]any{"id": 1, "name": "scope"}))
	require.NoError(t, coll.InsertMany(ctx, []map[string]any{
		{"id": 2, "name": "probe"},
		{"id": 3, "name": "meter"},
	}))

	all, err := coll.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rec, found, err := coll.FindOne(ctx, map[string]any{"id": 2})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "probe", rec.Lookup("name").AsString())

	matched, err := coll.UpdateOne(ctx, map[string]any{"id": 2}, map[string]any{"name": "probe-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	rec, found, _ = coll.FindOne(ctx, map[string]any{"id": 2})
	require.True(t, found)
	assert.Equal(t, "probe-2", rec.Lookup("name").AsString())

	matched, err = coll.UpdateOne(ctx, map[string]any{"id": 99}, map[string]any{"name": "ghost"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), matched, "missing document is a zero-match, not an error")

	deleted, err := coll.DeleteMany(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	n, err := coll.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMemoryCollection_NumericAwareMatching(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection(types.CollectionEquipment)

	// Stored as a number, filtered with a CSV-shaped string.
	require.NoError(t, coll.InsertOne(ctx, map[string]any{"id": 3.0}))

	_, found, err := coll.FindOne(ctx, map[string]any{"id": "3"})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryStore_CollectionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Collection(types.CollectionEquipment).InsertOne(ctx, map[string]any{"id": 1}))

	n, err := s.Collection(types.CollectionSelectOptions).Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
