package identifier

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipd/snapmerge/pkg/types"
)

// uniqueRecords builds n records whose listed columns all carry distinct
// values, so every candidate clears the uniqueness threshold.
func uniqueRecords(n int, cols ...string) []*types.Record {
	records := make([]*types.Record, n)
	for i := 0; i < n; i++ {
		rec := types.NewRecord()
		for _, col := range cols {
			rec.Set(col, types.String(fmt.Sprintf("%s-%d", col, i)))
		}
		records[i] = rec
	}
	return records
}

func TestResolve_PriorityOrder(t *testing.T) {
	snapshot := uniqueRecords(10, "serial", "uuid", "id")
	live := uniqueRecords(10, "serial", "uuid", "id")

	col, ok := Resolve(snapshot, live, types.CollectionEquipment)
	require.True(t, ok)
	assert.Equal(t, "id", col, "exact id outranks uuid and serial")
}

func TestResolve_SuffixAndSubstringRules(t *testing.T) {
	tests := []struct {
		cols []string
		want string
	}{
		{[]string{"asset_id", "serial"}, "asset_id"},
		{[]string{"id_tag", "serial"}, "id_tag"},
		{[]string{"device_uuid", "serial"}, "device_uuid"},
		{[]string{"serial"}, "serial"},
		{[]string{"serial_number"}, "serial_number"},
		{[]string{"_id"}, "_id"},
	}

	for _, tt := range tests {
		snapshot := uniqueRecords(10, tt.cols...)
		col, ok := Resolve(snapshot, snapshot, types.CollectionEquipment)
		require.True(t, ok, "cols %v", tt.cols)
		assert.Equal(t, tt.want, col)
	}
}

func TestResolve_UniquenessThreshold(t *testing.T) {
	// Only 50% distinct serials: must never be selected.
	records := make([]*types.Record, 10)
	for i := range records {
		rec := types.NewRecord()
		rec.Set("serial", types.String(fmt.Sprintf("sn-%d", i/2)))
		records[i] = rec
	}

	_, ok := Resolve(records, records, types.CollectionEquipment)
	assert.False(t, ok, "50%% unique column must not qualify")
}

func TestResolve_BlankValuesCountAgainstUniqueness(t *testing.T) {
	// 7 of 10 serials blank: 3 distinct / 10 records = 0.3.
	records := make([]*types.Record, 10)
	for i := range records {
		rec := types.NewRecord()
		if i < 3 {
			rec.Set("serial", types.String(fmt.Sprintf("sn-%d", i)))
		} else {
			rec.Set("serial", types.String(""))
		}
		records[i] = rec
	}

	_, ok := Resolve(records, records, types.CollectionEquipment)
	assert.False(t, ok)
}

func TestResolve_SelectOptionsIndexOverride(t *testing.T) {
	// The index token wins immediately for select options, even when its
	// values would fail the uniqueness check.
	records := make([]*types.Record, 4)
	for i := range records {
		rec := types.NewRecord()
		rec.Set("index", types.String("dup"))
		rec.Set("id", types.String(fmt.Sprintf("%d", i)))
		records[i] = rec
	}

	col, ok := Resolve(records, records, types.CollectionSelectOptions)
	require.True(t, ok)
	assert.Equal(t, "index", col)

	// Same columns under the equipment kind: index must pass the normal
	// rules, which the duplicated values fail, so id wins instead.
	col, ok = Resolve(records, records, types.CollectionEquipment)
	require.True(t, ok)
	assert.Equal(t, "id", col)
}

func TestResolve_RequiresColumnOnBothSides(t *testing.T) {
	snapshot := uniqueRecords(5, "id")
	live := uniqueRecords(5, "serial")

	_, ok := Resolve(snapshot, live, types.CollectionEquipment)
	assert.False(t, ok, "id only exists in the snapshot")
}

func TestResolve_EmptyLiveUsesSnapshotColumns(t *testing.T) {
	snapshot := uniqueRecords(5, "id")

	col, ok := Resolve(snapshot, nil, types.CollectionEquipment)
	require.True(t, ok)
	assert.Equal(t, "id", col)
}

func TestResolve_EmptySnapshot(t *testing.T) {
	_, ok := Resolve(nil, uniqueRecords(3, "id"), types.CollectionEquipment)
	assert.False(t, ok)
}

func TestResolve_CaseInsensitiveMatch(t *testing.T) {
	snapshot := uniqueRecords(10, "ID")
	col, ok := Resolve(snapshot, snapshot, types.CollectionEquipment)
	require.True(t, ok)
	assert.Equal(t, "ID", col, "matching is case-insensitive but the original name is returned")
}
