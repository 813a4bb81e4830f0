package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/equipd/snapmerge/pkg/types"
)

// MongoConfig names the database and the two managed collections.
type MongoConfig struct {
	URI                     string
	Database                string
	EquipmentCollection     string
	SelectOptionsCollection string
}

// mongoStore implements Store on top of the MongoDB driver.
type mongoStore struct {
	client *mongo.Client
	cfg    MongoConfig
}

// ConnectMongo connects to MongoDB and verifies the connection with a
// bounded ping before handing the store to callers.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	s := &mongoStore{client: client, cfg: cfg}
	if err := s.Ping(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (s *mongoStore) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *mongoStore) Collection(kind types.Collection) Collection {
	name := s.cfg.EquipmentCollection
	if kind == types.CollectionSelectOptions {
		name = s.cfg.SelectOptionsCollection
	}
	return &mongoCollection{
		coll: s.client.Database(s.cfg.Database).Collection(name),
	}
}

type mongoCollection struct {
	coll *mongo.Collection
}

// toFilter converts a plain filter map to bson, defaulting to match-all.
func toFilter(filter map[string]any) bson.M {
	m := bson.M{}
	for k, v := range filter {
		m[k] = v
	}
	return m
}

// decodeRecord converts an ordered bson document to a Record. The store's
// own _id is projected out on reads, so it never reaches the differ.
func decodeRecord(doc bson.D) *types.Record {
	rec := types.NewRecord()
	for _, elem := range doc {
		rec.Set(elem.Key, types.FromNative(elem.Value))
	}
	return rec
}

func (c *mongoCollection) FindAll(ctx context.Context, filter map[string]any) ([]*types.Record, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0})
	cursor, err := c.coll.Find(ctx, toFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*types.Record
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		records = append(records, decodeRecord(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return records, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter map[string]any) (*types.Record, bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 0})
	var doc bson.D
	err := c.coll.FindOne(ctx, toFilter(filter), opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find one: %w", err)
	}
	return decodeRecord(doc), true, nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc map[string]any) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert one: %w", err)
	}
	return nil
}

func (c *mongoCollection) InsertMany(ctx context.Context, docs []map[string]any) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]any, len(docs))
	for i, d := range docs {
		batch[i] = d
	}
	if _, err := c.coll.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("insert many: %w", err)
	}
	return nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter map[string]any, changes map[string]any) (int64, error) {
	res, err := c.coll.UpdateOne(ctx, toFilter(filter), bson.M{"$set": changes})
	if err != nil {
		return 0, fmt.Errorf("update one: %w", err)
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection) DeleteMany(ctx context.Context, filter map[string]any) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, toFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("delete many: %w", err)
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) Count(ctx context.Context, filter map[string]any) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, toFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
