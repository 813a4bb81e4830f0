// Package store provides access to the live equipment collections through
// a generic document-store interface. The merge engine only ever sees this
// interface; nothing above it knows the backing database.
package store

import (
	"context"

	"github.com/equipd/snapmerge/pkg/types"
)

// Collection is the minimal document-collection surface the merge engine
// consumes. Every call is synchronous and bounded by the driver's own
// timeouts; the engine performs no retries of its own.
type Collection interface {
	// FindAll returns every record matching the filter, without the
	// store's internal document ID. A nil filter matches everything.
	FindAll(ctx context.Context, filter map[string]any) ([]*types.Record, error)

	// FindOne returns the first record matching the filter, or ok=false
	// when nothing matches.
	FindOne(ctx context.Context, filter map[string]any) (*types.Record, bool, error)

	// InsertOne writes a single document.
	InsertOne(ctx context.Context, doc map[string]any) error

	// InsertMany writes a batch of documents.
	InsertMany(ctx context.Context, docs []map[string]any) error

	// UpdateOne applies a $set-style point write to the first document
	// matching the filter and returns how many documents matched. Zero
	// matches is not an error at this layer; the caller decides.
	UpdateOne(ctx context.Context, filter map[string]any, changes map[string]any) (int64, error)

	// DeleteMany removes every matching document and returns the count.
	DeleteMany(ctx context.Context, filter map[string]any) (int64, error)

	// Count returns the number of documents matching the filter.
	Count(ctx context.Context, filter map[string]any) (int64, error)
}

// Store hands out the two managed collections.
type Store interface {
	Collection(kind types.Collection) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
