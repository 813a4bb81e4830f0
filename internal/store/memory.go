package store

import (
	"context"
	"sync"

	"github.com/equipd/snapmerge/internal/differ"
	"github.com/equipd/snapmerge/pkg/types"
)

// MemoryStore is an in-process Store used by tests and dry runs. Matching
// uses the same value-equality rules as the differ, so "3" matches 3.0 the
// way it would after a CSV round-trip.
type MemoryStore struct {
	mu    sync.Mutex
	colls map[types.Collection]*memoryCollection
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		colls: map[types.Collection]*memoryCollection{
			types.CollectionEquipment:     {},
			types.CollectionSelectOptions: {},
		},
	}
}

func (s *MemoryStore) Collection(kind types.Collection) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.colls[kind]; ok {
		return c
	}
	c := &memoryCollection{}
	s.colls[kind] = c
	return c
}

func (s *MemoryStore) Ping(ctx context.Context) error  { return nil }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Seed replaces the collection contents, for test setup.
func (s *MemoryStore) Seed(kind types.Collection, records []*types.Record) {
	coll := s.Collection(kind).(*memoryCollection)
	coll.mu.Lock()
	defer coll.mu.Unlock()
	coll.docs = nil
	for _, rec := range records {
		coll.docs = append(coll.docs, rec.Clone())
	}
}

type memoryCollection struct {
	mu   sync.Mutex
	docs []*types.Record
}

func matches(rec *types.Record, filter map[string]any) bool {
	for field, want := range filter {
		if !differ.ValuesEqual(rec.Lookup(field), types.FromNative(want)) {
			return false
		}
	}
	return true
}

func (c *memoryCollection) FindAll(ctx context.Context, filter map[string]any) ([]*types.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*types.Record
	for _, doc := range c.docs {
		if matches(doc, filter) {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter map[string]any) (*types.Record, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if matches(doc, filter) {
			return doc.Clone(), true, nil
		}
	}
	return nil, false, nil
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, recordFromDoc(doc))
	return nil
}

func (c *memoryCollection) InsertMany(ctx context.Context, docs []map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range docs {
		c.docs = append(c.docs, recordFromDoc(doc))
	}
	return nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter map[string]any, changes map[string]any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if matches(doc, filter) {
			for field, v := range changes {
				doc.Set(field, types.FromNative(v))
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) DeleteMany(ctx context.Context, filter map[string]any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var kept []*types.Record
	var deleted int64
	for _, doc := range c.docs {
		if matches(doc, filter) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept
	return deleted, nil
}

func (c *memoryCollection) Count(ctx context.Context, filter map[string]any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, doc := range c.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

// recordFromDoc builds a record from a plain map. Map iteration order is
// not stable; tests that care about field order seed Records directly.
func recordFromDoc(doc map[string]any) *types.Record {
	rec := types.NewRecord()
	for k, v := range doc {
		rec.Set(k, types.FromNative(v))
	}
	return rec
}
