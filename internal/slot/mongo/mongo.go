package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spsworld03/sps-bill-brew/internal/slot"
)

const collectionName = "durable_slots"

type slotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Slot struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func New(ctx context.Context, uri string, database string) (*Slot, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Slot{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}, nil
}

func (s *Slot) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Slot) Get(ctx context.Context, key string) (string, error) {
	var doc slotDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", slot.ErrNotFound
		}
		return "", err
	}
	return doc.Value, nil
}

func (s *Slot) Set(ctx context.Context, key string, value string) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": key},
		slotDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Slot) Remove(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
