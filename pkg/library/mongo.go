package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "maps"

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI      string
	Database string
}

// MongoStore keeps entries as documents keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := ping(ctx, func(ctx context.Context) error { return client.Ping(ctx, nil) }); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(mongoCollection),
	}, nil
}

func (s *MongoStore) Put(ctx context.Context, e *Entry) error {
	if err := e.prepare(time.Now()); err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"name":       e.Name,
			"data":       []byte(e.Data),
			"nodes":      e.Nodes,
			"arrows":     e.Arrows,
			"updated_at": e.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": e.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After).
		SetProjection(bson.M{"created_at": 1})

	var stored struct {
		CreatedAt time.Time `bson:"created_at"`
	}
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": e.ID}, update, opts).Decode(&stored)
	if err != nil {
		return fmt.Errorf("put %s: %w", e.ID, err)
	}
	e.CreatedAt = stored.CreatedAt.UTC()
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Entry, error) {
	var doc struct {
		ID        string    `bson:"_id"`
		Name      string    `bson:"name"`
		Data      []byte    `bson:"data"`
		Nodes     int       `bson:"nodes"`
		Arrows    int       `bson:"arrows"`
		CreatedAt time.Time `bson:"created_at"`
		UpdatedAt time.Time `bson:"updated_at"`
	}
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return &Entry{
		ID:        doc.ID,
		Name:      doc.Name,
		Data:      doc.Data,
		Nodes:     doc.Nodes,
		Arrows:    doc.Arrows,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().SetProjection(bson.M{"data": 0, "created_at": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer cur.Close(ctx)

	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	for i := range out {
		out[i].UpdatedAt = out[i].UpdatedAt.UTC()
	}
	sortSummaries(out)
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
