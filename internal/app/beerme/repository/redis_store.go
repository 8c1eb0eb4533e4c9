package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"beerme/internal/app/beerme/entity"
)

// scopeLocks сериализует read-modify-write по каналу внутри процесса
// Redis-команды атомарны сами по себе, но Upsert - это чтение плюс запись
type scopeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *scopeLocks) lock(channel string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[channel]
	if !ok {
		m = &sync.Mutex{}
		l.locks[channel] = m
	}
	return m
}

// NewRedisClient создает и проверяет подключение к Redis
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RedisReviewStore хранит отзывы в Redis: один хэш на канал,
// поле хэша - id пива, значение - JSON записи
type RedisReviewStore struct {
	client *redis.Client
	locks  *scopeLocks
}

func NewRedisReviewStore(client *redis.Client) *RedisReviewStore {
	return &RedisReviewStore{client: client, locks: newScopeLocks()}
}

func reviewsKey(channel string) string {
	return "beerme:reviews:" + channel
}

func mentionsKey(channel string) string {
	return "beerme:mentions:" + channel
}

func (s *RedisReviewStore) Get(ctx context.Context, channel, beerID string) (*entity.ReviewRecord, error) {
	data, err := s.client.HGet(ctx, reviewsKey(channel), beerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get review record: %w", err)
	}

	var rec entity.ReviewRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal review record: %w", err)
	}
	return &rec, nil
}

func (s *RedisReviewStore) GetAll(ctx context.Context, channel string) (map[string]*entity.ReviewRecord, error) {
	raw, err := s.client.HGetAll(ctx, reviewsKey(channel)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get review records: %w", err)
	}

	out := make(map[string]*entity.ReviewRecord, len(raw))
	for id, data := range raw {
		var rec entity.ReviewRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal review record %s: %w", id, err)
		}
		out[id] = &rec
	}
	return out, nil
}

func (s *RedisReviewStore) UpsertReview(ctx context.Context, channel, beerID, name, brewery string, review entity.Review) (*entity.ReviewRecord, error) {
	mu := s.locks.lock(channel)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.Get(ctx, channel, beerID)
	switch {
	case err == nil:
		rec.Reviews = append(rec.Reviews, review)
	case errors.Is(err, ErrRecordNotFound):
		rec = &entity.ReviewRecord{
			BeerID:        beerID,
			Name:          name,
			BreweryName:   brewery,
			FirstReviewer: review.Author,
			CreatedAt:     time.Now().UTC(),
			Reviews:       []entity.Review{review},
			Votes:         0,
		}
	default:
		return nil, err
	}

	if err := s.put(ctx, channel, beerID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RedisReviewStore) SetVotes(ctx context.Context, channel, beerID string, votes int) error {
	mu := s.locks.lock(channel)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.Get(ctx, channel, beerID)
	if err != nil {
		return err
	}
	rec.Votes = votes

	return s.put(ctx, channel, beerID, rec)
}

func (s *RedisReviewStore) put(ctx context.Context, channel, beerID string, rec *entity.ReviewRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal review record: %w", err)
	}
	if err := s.client.HSet(ctx, reviewsKey(channel), beerID, data).Err(); err != nil {
		return fmt.Errorf("failed to store review record: %w", err)
	}
	return nil
}

// Flush - no-op: каждая мутация уже записана командой HSET
func (s *RedisReviewStore) Flush(ctx context.Context, channel string) error {
	return nil
}

func (s *RedisReviewStore) Close(ctx context.Context) error {
	return nil
}

// RedisMentionStore хранит упоминания в Redis, отдельный хэш от отзывов
type RedisMentionStore struct {
	client *redis.Client
	locks  *scopeLocks
}

func NewRedisMentionStore(client *redis.Client) *RedisMentionStore {
	return &RedisMentionStore{client: client, locks: newScopeLocks()}
}

func (s *RedisMentionStore) Get(ctx context.Context, channel, beerID string) (*entity.MentionRecord, error) {
	data, err := s.client.HGet(ctx, mentionsKey(channel), beerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get mention record: %w", err)
	}

	var rec entity.MentionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mention record: %w", err)
	}
	return &rec, nil
}

func (s *RedisMentionStore) GetAll(ctx context.Context, channel string) (map[string]*entity.MentionRecord, error) {
	raw, err := s.client.HGetAll(ctx, mentionsKey(channel)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get mention records: %w", err)
	}

	out := make(map[string]*entity.MentionRecord, len(raw))
	for id, data := range raw {
		var rec entity.MentionRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mention record %s: %w", id, err)
		}
		out[id] = &rec
	}
	return out, nil
}

func (s *RedisMentionStore) UpsertMention(ctx context.Context, channel, beerID, name, brewery string, ref entity.MentionRef) (*entity.MentionRecord, error) {
	mu := s.locks.lock(channel)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.Get(ctx, channel, beerID)
	switch {
	case err == nil:
		rec.Refs = append(rec.Refs, ref)
	case errors.Is(err, ErrRecordNotFound):
		rec = &entity.MentionRecord{
			BeerID:      beerID,
			Name:        name,
			BreweryName: brewery,
			Refs:        []entity.MentionRef{ref},
		}
	default:
		return nil, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mention record: %w", err)
	}
	if err := s.client.HSet(ctx, mentionsKey(channel), beerID, data).Err(); err != nil {
		return nil, fmt.Errorf("failed to store mention record: %w", err)
	}
	return rec, nil
}

func (s *RedisMentionStore) Flush(ctx context.Context, channel string) error {
	return nil
}

func (s *RedisMentionStore) Close(ctx context.Context) error {
	return nil
}
