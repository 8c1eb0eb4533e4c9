package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"beerme/internal/app/beerme/entity"
	"beerme/pkg/logger"
)

// MongoReviewStore хранит отзывы в MongoDB: документ на (канал, пиво),
// _id = "<канал>:<id пива>". Append делается атомарным $push,
// снимок имени/пивоварни ставится только при вставке через $setOnInsert
type MongoReviewStore struct {
	collection *mongo.Collection
}

// NewMongoReviewStore создает mongo-хранилище отзывов с индексом по каналу
func NewMongoReviewStore(db *mongo.Database) *MongoReviewStore {
	collection := db.Collection("review_records")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "channel", Value: 1}},
		Options: options.Index().SetName("channel_idx"),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("Failed to create index on channel")
	}

	return &MongoReviewStore{collection: collection}
}

func recordID(channel, beerID string) string {
	return channel + ":" + beerID
}

func (s *MongoReviewStore) Get(ctx context.Context, channel, beerID string) (*entity.ReviewRecord, error) {
	var rec entity.ReviewRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": recordID(channel, beerID)}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get review record: %w", err)
	}
	return &rec, nil
}

func (s *MongoReviewStore) GetAll(ctx context.Context, channel string) (map[string]*entity.ReviewRecord, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"channel": channel})
	if err != nil {
		return nil, fmt.Errorf("failed to find review records: %w", err)
	}
	defer cursor.Close(ctx)

	out := make(map[string]*entity.ReviewRecord)
	for cursor.Next(ctx) {
		var rec entity.ReviewRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode review record: %w", err)
		}
		out[rec.BeerID] = &rec
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review records: %w", err)
	}
	return out, nil
}

func (s *MongoReviewStore) UpsertReview(ctx context.Context, channel, beerID, name, brewery string, review entity.Review) (*entity.ReviewRecord, error) {
	filter := bson.M{"_id": recordID(channel, beerID)}
	update := bson.M{
		"$push": bson.M{"reviews": review},
		"$setOnInsert": bson.M{
			"channel":        channel,
			"beer_id":        beerID,
			"name":           name,
			"brewery_name":   brewery,
			"first_reviewer": review.Author,
			"created_at":     time.Now().UTC(),
			"votes":          0,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec entity.ReviewRecord
	if err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to upsert review record: %w", err)
	}
	return &rec, nil
}

func (s *MongoReviewStore) SetVotes(ctx context.Context, channel, beerID string, votes int) error {
	filter := bson.M{"_id": recordID(channel, beerID)}
	update := bson.M{"$set": bson.M{"votes": votes}}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set votes: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Flush - no-op: каждая мутация сразу записана в MongoDB
func (s *MongoReviewStore) Flush(ctx context.Context, channel string) error {
	return nil
}

func (s *MongoReviewStore) Close(ctx context.Context) error {
	return nil
}

// MongoMentionStore хранит упоминания в MongoDB в отдельной коллекции
type MongoMentionStore struct {
	collection *mongo.Collection
}

func NewMongoMentionStore(db *mongo.Database) *MongoMentionStore {
	collection := db.Collection("mention_records")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "channel", Value: 1}},
		Options: options.Index().SetName("channel_idx"),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("Failed to create index on channel")
	}

	return &MongoMentionStore{collection: collection}
}

func (s *MongoMentionStore) Get(ctx context.Context, channel, beerID string) (*entity.MentionRecord, error) {
	var rec entity.MentionRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": recordID(channel, beerID)}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get mention record: %w", err)
	}
	return &rec, nil
}

func (s *MongoMentionStore) GetAll(ctx context.Context, channel string) (map[string]*entity.MentionRecord, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"channel": channel})
	if err != nil {
		return nil, fmt.Errorf("failed to find mention records: %w", err)
	}
	defer cursor.Close(ctx)

	out := make(map[string]*entity.MentionRecord)
	for cursor.Next(ctx) {
		var rec entity.MentionRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode mention record: %w", err)
		}
		out[rec.BeerID] = &rec
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mention records: %w", err)
	}
	return out, nil
}

func (s *MongoMentionStore) UpsertMention(ctx context.Context, channel, beerID, name, brewery string, ref entity.MentionRef) (*entity.MentionRecord, error) {
	filter := bson.M{"_id": recordID(channel, beerID)}
	update := bson.M{
		"$push": bson.M{"refs": ref},
		"$setOnInsert": bson.M{
			"channel":      channel,
			"beer_id":      beerID,
			"name":         name,
			"brewery_name": brewery,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec entity.MentionRecord
	if err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to upsert mention record: %w", err)
	}
	return &rec, nil
}

func (s *MongoMentionStore) Flush(ctx context.Context, channel string) error {
	return nil
}

func (s *MongoMentionStore) Close(ctx context.Context) error {
	return nil
}
