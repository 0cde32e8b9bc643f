package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tryluxor/server/internal/agent/model"
	errx "github.com/tryluxor/server/internal/core/error"
	logx "github.com/tryluxor/server/pkg/logger"
)

// threadDocument is one conversation thread in the checkpoint collection.
type threadDocument struct {
	ThreadID  string                `bson:"thread_id"`
	Messages  []model.StoredMessage `bson:"messages"`
	CreatedAt time.Time             `bson:"created_at"`
	UpdatedAt time.Time             `bson:"updated_at"`
}

type MongoThreadStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoThreadStore(coll *mongo.Collection) *MongoThreadStore {
	return &MongoThreadStore{coll: coll, now: func() time.Time { return time.Now().UTC() }}
}

func byThread(threadID string) bson.D {
	return bson.D{{Key: "thread_id", Value: threadID}}
}

func (s *MongoThreadStore) Append(ctx context.Context, threadID string, msgs ...model.StoredMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	now := s.now()
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "messages", Value: bson.D{{Key: "$each", Value: msgs}}}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: now}}},
	}
	if _, err := s.coll.UpdateOne(ctx, byThread(threadID), update, options.Update().SetUpsert(true)); err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to append checkpoint messages")
		return errx.WrapMongo(err)
	}
	return nil
}

func (s *MongoThreadStore) Load(ctx context.Context, threadID string) ([]model.StoredMessage, error) {
	var doc threadDocument
	err := s.coll.FindOne(ctx, byThread(threadID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []model.StoredMessage{}, nil
	}
	if err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to load checkpoint")
		return nil, errx.WrapMongo(err)
	}
	if doc.Messages == nil {
		return []model.StoredMessage{}, nil
	}
	return doc.Messages, nil
}

func (s *MongoThreadStore) Clear(ctx context.Context, threadID string) error {
	if _, err := s.coll.DeleteOne(ctx, byThread(threadID)); err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to delete checkpoint")
		return errx.WrapMongo(err)
	}
	return nil
}

func (s *MongoThreadStore) Count(ctx context.Context, threadID string) (int, error) {
	var out struct {
		Count int `bson:"count"`
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: byThread(threadID)}},
		{{Key: "$project", Value: bson.D{{Key: "count", Value: bson.D{{Key: "$size", Value: bson.D{
			{Key: "$ifNull", Value: bson.A{"$messages", bson.A{}}},
		}}}}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to count checkpoint messages")
		return 0, errx.WrapMongo(err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		// no document for this thread
		return 0, errx.WrapMongo(cur.Err())
	}
	if err := cur.Decode(&out); err != nil {
		return 0, errx.WrapMongo(err)
	}
	return out.Count, nil
}

// EnsureIndexes creates the unique thread_id index.
func (s *MongoThreadStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "thread_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logx.Error().Err(err).Str("collection", s.coll.Name()).Msg("failed to create checkpoint index")
		return errx.WrapMongo(err)
	}
	return nil
}

var _ model.ThreadStore = (*MongoThreadStore)(nil)
