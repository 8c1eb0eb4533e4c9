package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"beerme/internal/app/beerme/entity"
)

// MockReviewStore мок для ReviewStore
type MockReviewStore struct {
	mock.Mock
}

func (m *MockReviewStore) Get(ctx context.Context, channel, beerID string) (*entity.ReviewRecord, error) {
	args := m.Called(ctx, channel, beerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewRecord), args.Error(1)
}

func (m *MockReviewStore) GetAll(ctx context.Context, channel string) (map[string]*entity.ReviewRecord, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*entity.ReviewRecord), args.Error(1)
}

func (m *MockReviewStore) UpsertReview(ctx context.Context, channel, beerID, name, brewery string, review entity.Review) (*entity.ReviewRecord, error) {
	args := m.Called(ctx, channel, beerID, name, brewery, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewRecord), args.Error(1)
}

func (m *MockReviewStore) SetVotes(ctx context.Context, channel, beerID string, votes int) error {
	args := m.Called(ctx, channel, beerID, votes)
	return args.Error(0)
}

func (m *MockReviewStore) Flush(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockReviewStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMentionStore мок для MentionStore
type MockMentionStore struct {
	mock.Mock
}

func (m *MockMentionStore) Get(ctx context.Context, channel, beerID string) (*entity.MentionRecord, error) {
	args := m.Called(ctx, channel, beerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MentionRecord), args.Error(1)
}

func (m *MockMentionStore) GetAll(ctx context.Context, channel string) (map[string]*entity.MentionRecord, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*entity.MentionRecord), args.Error(1)
}

func (m *MockMentionStore) UpsertMention(ctx context.Context, channel, beerID, name, brewery string, ref entity.MentionRef) (*entity.MentionRecord, error) {
	args := m.Called(ctx, channel, beerID, name, brewery, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MentionRecord), args.Error(1)
}

func (m *MockMentionStore) Flush(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockMentionStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	return nil
}

// MockBeerCatalog мок для каталога BreweryDB
type MockBeerCatalog struct {
	mock.Mock
}

func (m *MockBeerCatalog) Random(ctx context.Context, withBreweries bool) (*entity.Beer, error) {
	args := m.Called(ctx, withBreweries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Beer), args.Error(1)
}

func (m *MockBeerCatalog) Search(ctx context.Context, query string) ([]entity.Beer, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Beer), args.Error(1)
}
