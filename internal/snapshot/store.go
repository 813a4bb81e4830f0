// Package snapshot owns the on-disk snapshot layout: a folder per weekday,
// each holding timestamped CSV pairs and a metadata JSON per capture. No
// other component writes under the backup root.
package snapshot

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/equipd/snapmerge/internal/logger"
	"github.com/equipd/snapmerge/internal/scheduler"
	"github.com/equipd/snapmerge/internal/store"
	"github.com/equipd/snapmerge/pkg/types"
)

// Config holds snapshot store settings.
type Config struct {
	BaseDir       string
	RetentionDays int
}

// Store reads and writes point-in-time snapshots of the two managed
// collections.
type Store struct {
	baseDir       string
	retentionDays int
	log           logger.Logger
	now           func() time.Time
}

// NewStore creates the backup root and its day folders if needed.
func NewStore(cfg Config, log logger.Logger) (*Store, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("snapshot store: base directory is required")
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}

	for _, day := range types.DayNames {
		if err := os.MkdirAll(filepath.Join(cfg.BaseDir, day), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", day, err)
		}
	}

	return &Store{
		baseDir:       cfg.BaseDir,
		retentionDays: cfg.RetentionDays,
		log:           log,
		now:           time.Now,
	}, nil
}

// CaptureResult reports the outcome of a capture attempt.
type CaptureResult struct {
	Created  bool
	Location string
	Message  string
	Meta     *types.SnapshotMeta
}

// Capture exports both live collections to a new CSV pair plus metadata.
// When the most recent snapshot is younger than intervalHours the capture
// is skipped with Created=false; that throttle is what lets callers invoke
// Capture on every tick without piling up redundant snapshots. Pass
// intervalHours <= 0 to force a capture.
func (s *Store) Capture(ctx context.Context, src store.Store, intervalHours float64) (*CaptureResult, error) {
	now := s.now()

	if intervalHours > 0 {
		if last, ok := s.lastCaptureTime(); ok && !scheduler.ShouldCaptureNow(last, now, intervalHours) {
			return &CaptureResult{
				Created: false,
				Message: fmt.Sprintf("capture skipped: last snapshot was %s ago (interval %.2fh)",
					now.Sub(last).Round(time.Second), intervalHours),
			}, nil
		}
	}

	equipment, err := src.Collection(types.CollectionEquipment).FindAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("reading equipment collection: %w", err)
	}
	selectOptions, err := src.Collection(types.CollectionSelectOptions).FindAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("reading select options collection: %w", err)
	}

	dayName := types.DayName(now)
	dayDir := filepath.Join(s.baseDir, dayName)
	stamp := now.Format("20060102_150405")

	meta := &types.SnapshotMeta{
		BackupTimestamp:     now,
		BackupIntervalHours: intervalHours,
		DayOfWeek:           dayName,
		EquipmentCount:      len(equipment),
		SelectOptionsCount:  len(selectOptions),
		EquipmentFile:       fmt.Sprintf("equipment_backup_%s.csv", stamp),
		SelectOptionsFile:   fmt.Sprintf("select_options_backup_%s.csv", stamp),
	}

	// The equipment export drops any stray index column a prior
	// serialization bug may have introduced; the select-options export
	// keeps every column because its index token is the restore key.
	equipmentCSV, err := marshalCSV(equipment, syntheticIndexColumn)
	if err != nil {
		return nil, fmt.Errorf("serializing equipment records: %w", err)
	}
	selectOptionsCSV, err := marshalCSV(selectOptions, nil)
	if err != nil {
		return nil, fmt.Errorf("serializing select options records: %w", err)
	}
	meta.BackupHash = contentHash(equipmentCSV, selectOptionsCSV)

	equipmentPath := filepath.Join(dayDir, meta.EquipmentFile)
	selectOptionsPath := filepath.Join(dayDir, meta.SelectOptionsFile)
	metaPath := filepath.Join(dayDir, fmt.Sprintf("backup_metadata_%s.json", stamp))

	if err := os.WriteFile(equipmentPath, equipmentCSV, 0o644); err != nil {
		return nil, fmt.Errorf("writing equipment snapshot: %w", err)
	}
	if err := os.WriteFile(selectOptionsPath, selectOptionsCSV, 0o644); err != nil {
		return nil, fmt.Errorf("writing select options snapshot: %w", err)
	}
	if err := s.saveJSON(metaPath, meta); err != nil {
		return nil, fmt.Errorf("writing snapshot metadata: %w", err)
	}

	meta.EquipmentPath = equipmentPath
	meta.SelectOptionsPath = selectOptionsPath
	meta.MetadataPath = metaPath

	// Retention pruning rides along with every capture; failures there
	// are warnings, never a capture failure.
	s.Prune(s.retentionDays)

	return &CaptureResult{
		Created:  true,
		Location: metaPath,
		Message:  fmt.Sprintf("snapshot created in %s folder (%d equipment, %d select options)", dayName, len(equipment), len(selectOptions)),
		Meta:     meta,
	}, nil
}

// List returns all snapshot metadata grouped by day folder, newest first
// within each day. Iterate types.DayNames for the Sunday-first display
// order. Unreadable metadata files are logged and skipped, not fatal.
func (s *Store) List() (map[string][]*types.SnapshotMeta, error) {
	out := make(map[string][]*types.SnapshotMeta, len(types.DayNames))
	for _, day := range types.DayNames {
		metas, err := s.listDay(day)
		if err != nil {
			return nil, err
		}
		out[day] = metas
	}
	return out, nil
}

func (s *Store) listDay(day string) ([]*types.SnapshotMeta, error) {
	dayDir := filepath.Join(s.baseDir, day)
	entries, err := os.ReadDir(dayDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s directory: %w", day, err)
	}

	var metas []*types.SnapshotMeta
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "backup_metadata_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		path := filepath.Join(dayDir, name)
		var meta types.SnapshotMeta
		if err := s.loadJSON(path, &meta); err != nil {
			s.log.Warn("could not read snapshot metadata " + path + ": " + err.Error())
			continue
		}

		meta.MetadataPath = path
		meta.EquipmentPath = filepath.Join(dayDir, meta.EquipmentFile)
		meta.SelectOptionsPath = filepath.Join(dayDir, meta.SelectOptionsFile)
		metas = append(metas, &meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].BackupTimestamp.After(metas[j].BackupTimestamp)
	})
	return metas, nil
}

// Latest returns the most recent snapshot metadata across all days.
func (s *Store) Latest() (*types.SnapshotMeta, bool) {
	var latest *types.SnapshotMeta
	for _, day := range types.DayNames {
		metas, err := s.listDay(day)
		if err != nil {
			continue
		}
		for _, meta := range metas {
			if latest == nil || meta.BackupTimestamp.After(latest.BackupTimestamp) {
				latest = meta
			}
		}
	}
	return latest, latest != nil
}

// Find returns the snapshot whose metadata file name or timestamp matches
// the given reference, searching newest first.
func (s *Store) Find(ref string) (*types.SnapshotMeta, error) {
	for _, day := range types.DayNames {
		metas, err := s.listDay(day)
		if err != nil {
			continue
		}
		for _, meta := range metas {
			if filepath.Base(meta.MetadataPath) == ref ||
				meta.BackupTimestamp.Format("20060102_150405") == ref ||
				meta.BackupTimestamp.Format(time.RFC3339) == ref {
				return meta, nil
			}
		}
	}
	return nil, fmt.Errorf("snapshot not found: %s", ref)
}

// Read parses one collection's CSV out of a snapshot. Decoding tries a
// chain of text encodings until one succeeds; a file that defeats the whole
// chain is a hard read error.
func (s *Store) Read(meta *types.SnapshotMeta, kind types.Collection) ([]*types.Record, error) {
	path := meta.PathFor(kind)
	if path == "" {
		path = filepath.Join(filepath.Dir(meta.MetadataPath), meta.FileFor(kind))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	records, err := unmarshalCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot file %s: %w", path, err)
	}

	return stripSyntheticColumns(records, kind), nil
}

// Prune deletes snapshot CSVs and metadata older than the retention
// window, judged by file modification time. Best-effort: every failure is
// logged as a warning and the sweep continues.
func (s *Store) Prune(retentionDays int) int {
	if retentionDays <= 0 {
		retentionDays = s.retentionDays
	}
	now := s.now()

	pruned := 0
	for _, day := range types.DayNames {
		dayDir := filepath.Join(s.baseDir, day)
		entries, err := os.ReadDir(dayDir)
		if err != nil {
			if !os.IsNotExist(err) {
				s.log.Warn("prune: could not read " + dayDir + ": " + err.Error())
			}
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if !isSnapshotFile(name) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				s.log.Warn("prune: could not stat " + name + ": " + err.Error())
				continue
			}
			if !scheduler.Expired(info.ModTime(), now, retentionDays) {
				continue
			}
			if err := os.Remove(filepath.Join(dayDir, name)); err != nil {
				s.log.Warn("prune: could not remove " + name + ": " + err.Error())
				continue
			}
			pruned++
		}
	}

	if pruned > 0 {
		s.log.WithField("files", pruned).Info("pruned expired snapshot files")
	}
	return pruned
}

func isSnapshotFile(name string) bool {
	if strings.HasPrefix(name, "backup_metadata_") && strings.HasSuffix(name, ".json") {
		return true
	}
	return strings.Contains(name, "_backup_") && strings.HasSuffix(name, ".csv")
}

// lastCaptureTime finds the newest recorded capture across all day
// folders. Missing or unreadable metadata simply reads as "never".
func (s *Store) lastCaptureTime() (time.Time, bool) {
	meta, ok := s.Latest()
	if !ok {
		return time.Time{}, false
	}
	return meta.BackupTimestamp, true
}

// contentHash fingerprints the capture: each CSV is hashed, and the pair of
// digests is hashed again. Best-effort integrity only; restore never
// verifies it cryptographically.
func contentHash(equipmentCSV, selectOptionsCSV []byte) string {
	h1 := md5.Sum(equipmentCSV)
	h2 := md5.Sum(selectOptionsCSV)
	combined := md5.Sum([]byte(hex.EncodeToString(h1[:]) + "_" + hex.EncodeToString(h2[:])))
	return hex.EncodeToString(combined[:])
}

// saveJSON writes indented JSON, creating or truncating the file.
func (s *Store) saveJSON(path string, data interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// loadJSON reads JSON from the given path into target.
func (s *Store) loadJSON(path string, target interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}
