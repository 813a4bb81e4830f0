package types

import (
	"errors"
	"strings"
	"time"
)

// Collection names the two logical record collections the system manages.
type Collection string

const (
	CollectionEquipment     Collection = "equipment"
	CollectionSelectOptions Collection = "select_options"
)

// IndexField is the generated identifier column of the select-options
// collection. It is a UUID token, not a business key, and restore
// correctness depends on it surviving the CSV round-trip.
const IndexField = "index"

// RequiresGeneratedIndex reports whether records in this collection must
// carry a generated identifier before insertion.
func (c Collection) RequiresGeneratedIndex() bool {
	return c == CollectionSelectOptions
}

// Validate checks that the collection name is one of the managed pair.
func (c Collection) Validate() error {
	switch c {
	case CollectionEquipment, CollectionSelectOptions:
		return nil
	}
	return errors.New("unknown collection: " + string(c))
}

// SnapshotMeta is the metadata record written next to each CSV pair.
type SnapshotMeta struct {
	BackupTimestamp     time.Time `json:"backup_timestamp"`
	BackupIntervalHours float64   `json:"backup_interval_hours"`
	DayOfWeek           string    `json:"day_of_week"`
	EquipmentCount      int       `json:"equipment_records_count"`
	SelectOptionsCount  int       `json:"select_options_records_count"`
	EquipmentFile       string    `json:"equipment_file"`
	SelectOptionsFile   string    `json:"select_options_file"`
	BackupHash          string    `json:"backup_hash"`

	// Resolved at listing time, never serialized.
	EquipmentPath     string `json:"-"`
	SelectOptionsPath string `json:"-"`
	MetadataPath      string `json:"-"`
}

// Validate checks that the metadata names both CSV files and a timestamp.
func (m *SnapshotMeta) Validate() error {
	if m.BackupTimestamp.IsZero() {
		return errors.New("snapshot metadata: timestamp is required")
	}
	if strings.TrimSpace(m.EquipmentFile) == "" {
		return errors.New("snapshot metadata: equipment file name is required")
	}
	if strings.TrimSpace(m.SelectOptionsFile) == "" {
		return errors.New("snapshot metadata: select options file name is required")
	}
	return nil
}

// FileFor returns the CSV file name for the given collection.
func (m *SnapshotMeta) FileFor(c Collection) string {
	if c == CollectionSelectOptions {
		return m.SelectOptionsFile
	}
	return m.EquipmentFile
}

// PathFor returns the resolved CSV path for the given collection.
func (m *SnapshotMeta) PathFor(c Collection) string {
	if c == CollectionSelectOptions {
		return m.SelectOptionsPath
	}
	return m.EquipmentPath
}

// CountFor returns the record count recorded for the given collection.
func (m *SnapshotMeta) CountFor(c Collection) int {
	if c == CollectionSelectOptions {
		return m.SelectOptionsCount
	}
	return m.EquipmentCount
}

// DayNames lists the day folders in display order, Sunday first. Storage
// uses the same names; only the presentation order is fixed here.
var DayNames = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// DayName returns the folder name for a capture time.
func DayName(t time.Time) string {
	return DayNames[int(t.Weekday())]
}
