package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipd/snapmerge/internal/logger"
	"github.com/equipd/snapmerge/internal/store"
	"github.com/equipd/snapmerge/pkg/types"
)

func record(pairs ...any) *types.Record {
	rec := types.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.Set(pairs[i].(string), types.FromNative(pairs[i+1]))
	}
	return rec
}

func testStore(t *testing.T) (*Store, *store.MemoryStore) {
	t.Helper()
	s, err := NewStore(Config{BaseDir: t.TempDir(), RetentionDays: 7}, logger.NewNop())
	require.NoError(t, err)

	mem := store.NewMemoryStore()
	mem.Seed(types.CollectionEquipment, []*types.Record{
		record("id", 1, "name", "scope", "location", "lab-1"),
		record("id", 2, "name", "probe", "location", "lab-2"),
	})
	mem.Seed(types.CollectionSelectOptions, []*types.Record{
		record("index", "tok-1", "option", "red"),
	})
	return s, mem
}

func TestCapture_WritesCSVPairAndMetadata(t *testing.T) {
	s, mem := testStore(t)
	now := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC) // a Sunday
	s.now = func() time.Time { return now }

	result, err := s.Capture(context.Background(), mem, 1)
	require.NoError(t, err)
	require.True(t, result.Created)
	require.NotNil(t, result.Meta)

	assert.Equal(t, "sunday", result.Meta.DayOfWeek)
	assert.Equal(t, 2, result.Meta.EquipmentCount)
	assert.Equal(t, 1, result.Meta.SelectOptionsCount)
	assert.NotEmpty(t, result.Meta.BackupHash)

	assert.FileExists(t, result.Meta.EquipmentPath)
	assert.FileExists(t, result.Meta.SelectOptionsPath)
	assert.FileExists(t, result.Meta.MetadataPath)
	assert.Contains(t, result.Meta.MetadataPath, filepath.Join("sunday", "backup_metadata_20260823_093000.json"))
}

func TestCapture_ThrottleSkipsRecentSnapshot(t *testing.T) {
	s, mem := testStore(t)
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	first, err := s.Capture(context.Background(), mem, 1)
	require.NoError(t, err)
	require.True(t, first.Created)

	// 30 minutes later with a 1-hour interval: skipped.
	s.now = func() time.Time { return base.Add(30 * time.Minute) }
	second, err := s.Capture(context.Background(), mem, 1)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Contains(t, second.Message, "skipped")

	// 90 minutes later: due again.
	s.now = func() time.Time { return base.Add(90 * time.Minute) }
	third, err := s.Capture(context.Background(), mem, 1)
	require.NoError(t, err)
	assert.True(t, third.Created)

	// Forced capture ignores the throttle.
	s.now = func() time.Time { return base.Add(91 * time.Minute) }
	forced, err := s.Capture(context.Background(), mem, 0)
	require.NoError(t, err)
	assert.True(t, forced.Created)
}

func TestCapture_RoundTrip(t *testing.T) {
	s, mem := testStore(t)
	s.now = func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) }

	result, err := s.Capture(context.Background(), mem, 0)
	require.NoError(t, err)

	equipment, err := s.Read(result.Meta, types.CollectionEquipment)
	require.NoError(t, err)
	require.Len(t, equipment, 2)
	assert.Equal(t, "scope", equipment[0].Lookup("name").AsString())
	assert.Equal(t, "1", equipment[0].Lookup("id").AsString(), "CSV round-trip keeps values as strings")

	selectOptions, err := s.Read(result.Meta, types.CollectionSelectOptions)
	require.NoError(t, err)
	require.Len(t, selectOptions, 1)
	assert.Equal(t, "tok-1", selectOptions[0].Lookup("index").AsString(),
		"select options keep their index column through the round-trip")
}

func TestCapture_EmptyCollectionsAreNotFatal(t *testing.T) {
	s, err := NewStore(Config{BaseDir: t.TempDir()}, logger.NewNop())
	require.NoError(t, err)

	result, err := s.Capture(context.Background(), store.NewMemoryStore(), 0)
	require.NoError(t, err)
	require.True(t, result.Created)
	assert.Zero(t, result.Meta.EquipmentCount)

	records, err := s.Read(result.Meta, types.CollectionEquipment)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestList_GroupsByDayNewestFirst(t *testing.T) {
	s, mem := testStore(t)

	monday := time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{monday, monday.Add(4 * time.Hour), monday.AddDate(0, 0, 1)} {
		at := at
		s.now = func() time.Time { return at }
		_, err := s.Capture(context.Background(), mem, 0)
		require.NoError(t, err)
	}

	listing, err := s.List()
	require.NoError(t, err)

	require.Len(t, listing["monday"], 2)
	require.Len(t, listing["tuesday"], 1)
	assert.Empty(t, listing["friday"])

	first, second := listing["monday"][0], listing["monday"][1]
	assert.True(t, first.BackupTimestamp.After(second.BackupTimestamp), "newest first within a day")
}

func TestFind_ByStampAndFileName(t *testing.T) {
	s, mem := testStore(t)
	s.now = func() time.Time { return time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC) }

	result, err := s.Capture(context.Background(), mem, 0)
	require.NoError(t, err)

	byStamp, err := s.Find("20260824_060000")
	require.NoError(t, err)
	assert.Equal(t, result.Meta.BackupHash, byStamp.BackupHash)

	byName, err := s.Find(filepath.Base(result.Meta.MetadataPath))
	require.NoError(t, err)
	assert.Equal(t, result.Meta.BackupHash, byName.BackupHash)

	_, err = s.Find("nope")
	assert.Error(t, err)
}

func TestPrune_RemovesOnlyExpiredFiles(t *testing.T) {
	s, mem := testStore(t)
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	result, err := s.Capture(context.Background(), mem, 0)
	require.NoError(t, err)

	// A fresh capture in another day folder must survive.
	s.now = func() time.Time { return now.AddDate(0, 0, 1) }
	fresh, err := s.Capture(context.Background(), mem, 0)
	require.NoError(t, err)

	// Age the first snapshot's files 8 days into the past.
	old := now.AddDate(0, 0, -8)
	for _, path := range []string{result.Meta.EquipmentPath, result.Meta.SelectOptionsPath, result.Meta.MetadataPath} {
		require.NoError(t, os.Chtimes(path, old, old))
	}

	pruned := s.Prune(7)
	assert.Equal(t, 3, pruned)

	assert.NoFileExists(t, result.Meta.MetadataPath)
	assert.FileExists(t, fresh.Meta.MetadataPath)
}

func TestRead_StripsSyntheticIndexColumns(t *testing.T) {
	s, _ := testStore(t)
	dayDir := filepath.Join(s.baseDir, "monday")

	csvData := "index,Unnamed: 0,id,name,0\n9,x,1,scope,junk\n"
	csvPath := filepath.Join(dayDir, "equipment_backup_20260824_120000.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(csvData), 0o644))

	meta := &types.SnapshotMeta{
		BackupTimestamp: time.Now(),
		EquipmentFile:   "equipment_backup_20260824_120000.csv",
		SelectOptionsFile: "select_options_backup_20260824_120000.csv",
		EquipmentPath:   csvPath,
	}

	records, err := s.Read(meta, types.CollectionEquipment)
	require.NoError(t, err)
	require.Len(t, records, 1)

	fields := records[0].Fields()
	assert.Equal(t, []string{"id", "name"}, fields)
}

func TestRead_EncodingFallback(t *testing.T) {
	s, _ := testStore(t)
	dayDir := filepath.Join(s.baseDir, "monday")

	// Latin-1 encoded: 0xE9 is é, invalid as UTF-8.
	data := []byte("id,name\n1,caf\xe9\n")
	csvPath := filepath.Join(dayDir, "equipment_backup_20260824_130000.csv")
	require.NoError(t, os.WriteFile(csvPath, data, 0o644))

	meta := &types.SnapshotMeta{
		EquipmentFile: "equipment_backup_20260824_130000.csv",
		EquipmentPath: csvPath,
	}

	records, err := s.Read(meta, types.CollectionEquipment)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "café", records[0].Lookup("name").AsString())
}

func TestRead_BOMDoesNotLeakIntoHeader(t *testing.T) {
	s, _ := testStore(t)
	dayDir := filepath.Join(s.baseDir, "monday")

	data := append([]byte{0xef, 0xbb, 0xbf}, []byte("id,name\n1,scope\n")...)
	csvPath := filepath.Join(dayDir, "equipment_backup_20260824_140000.csv")
	require.NoError(t, os.WriteFile(csvPath, data, 0o644))

	meta := &types.SnapshotMeta{
		EquipmentFile: "equipment_backup_20260824_140000.csv",
		EquipmentPath: csvPath,
	}

	records, err := s.Read(meta, types.CollectionEquipment)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Has("id"))
}

func TestRead_MissingFileIsAnError(t *testing.T) {
	s, _ := testStore(t)

	meta := &types.SnapshotMeta{
		EquipmentFile: "equipment_backup_29990101_000000.csv",
		EquipmentPath: filepath.Join(s.baseDir, "monday", "equipment_backup_29990101_000000.csv"),
	}

	_, err := s.Read(meta, types.CollectionEquipment)
	assert.Error(t, err)
}

func TestLatest(t *testing.T) {
	s, mem := testStore(t)

	_, ok := s.Latest()
	assert.False(t, ok, "empty store has no latest snapshot")

	times := []time.Time{
		time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 22, 8, 0, 0, 0, time.UTC),
	}
	for _, at := range times {
		at := at
		s.now = func() time.Time { return at }
		_, err := s.Capture(context.Background(), mem, 0)
		require.NoError(t, err)
	}

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "monday", latest.DayOfWeek)
}
