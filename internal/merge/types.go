package merge

import (
	"github.com/equipd/snapmerge/internal/differ"
	"github.com/equipd/snapmerge/pkg/types"
)

// sampleLimit caps the records carried in plan previews. Full lists are
// retained on the plan; only the preview accessors truncate.
const sampleLimit = 10

// Update pairs a live record with the snapshot record that will overwrite
// it, plus the field-level change set between them.
type Update struct {
	Live     *types.Record   `json:"live"`
	Snapshot *types.Record   `json:"snapshot"`
	Changes  differ.ChangeSet `json:"changes"`
}

// Plan is the result of classifying every snapshot record against the live
// collection. It is built fresh on each call, never mutated afterwards, and
// consumed at most once by the executor.
type Plan struct {
	Collection       types.Collection `json:"collection"`
	IdentifierColumn string           `json:"identifier_column,omitempty"` // empty when no column qualified

	Updates   []Update        `json:"updates,omitempty"`
	Inserts   []*types.Record `json:"inserts,omitempty"`
	Unchanged []*types.Record `json:"unchanged,omitempty"`

	// Reason is set on degraded plans: empty snapshot, empty live
	// collection, or no qualifying identifier column. Callers inspect it
	// instead of catching an error, because these are expected situations.
	Reason string `json:"reason,omitempty"`
}

// IsNoop reports whether applying the plan would write nothing.
func (p *Plan) IsNoop() bool {
	return len(p.Updates) == 0 && len(p.Inserts) == 0
}

// UpdateSamples returns at most sampleLimit updates for preview display.
func (p *Plan) UpdateSamples() []Update {
	if len(p.Updates) > sampleLimit {
		return p.Updates[:sampleLimit]
	}
	return p.Updates
}

// InsertSamples returns at most sampleLimit inserts for preview display.
func (p *Plan) InsertSamples() []*types.Record {
	if len(p.Inserts) > sampleLimit {
		return p.Inserts[:sampleLimit]
	}
	return p.Inserts
}

// RecordError records one failed point write; the batch continues past it.
type RecordError struct {
	Op         string `json:"op"` // "update" or "insert"
	Identifier string `json:"identifier"`
	Err        error  `json:"-"`
	Message    string `json:"message"`
}

// ApplyResult reports per-record outcomes of a plan application.
type ApplyResult struct {
	Updated   int           `json:"updated"`
	Inserted  int           `json:"inserted"`
	Unchanged int           `json:"unchanged"`
	Errors    []RecordError `json:"errors,omitempty"`
}
