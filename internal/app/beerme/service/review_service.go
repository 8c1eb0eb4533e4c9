package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"beerme/internal/app/beerme/entity"
	"beerme/internal/app/beerme/infrastructure"
	"beerme/internal/app/beerme/repository"
	"beerme/pkg/logger"
)

// VoteDirection - направление голоса по пиву
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// ReviewService обрабатывает отзывы и голоса
// Координирует хранилище и отправку событий в Kafka
type ReviewService struct {
	store     repository.ReviewStore
	publisher infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(store repository.ReviewStore, publisher infrastructure.MessagePublisher) *ReviewService {
	return &ReviewService{
		store:     store,
		publisher: publisher,
	}
}

// SubmitReview дописывает отзыв к записи пива (создавая ее при первом отзыве)
// и отправляет событие REVIEW_CREATED в Kafka
func (s *ReviewService) SubmitReview(ctx context.Context, channel string, beer *entity.Beer, review entity.Review) (*entity.ReviewRecord, error) {
	rec, err := s.store.UpsertReview(ctx, channel, beer.ID, beer.Name, beer.PrimaryBrewery(), review)
	if err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	s.publishEvent(ctx, entity.BeerEvent{
		EventID:   uuid.NewString(),
		EventType: entity.EventReviewCreated,
		Channel:   channel,
		BeerID:    beer.ID,
		BeerName:  beer.Name,
		Author:    review.Author,
		Rating:    review.Rating,
		Timestamp: time.Now().UTC(),
	})

	return rec, nil
}

// GetRecord возвращает запись отзывов по пиву
// repository.ErrRecordNotFound означает "пока нечего показывать"
func (s *ReviewService) GetRecord(ctx context.Context, channel, beerID string) (*entity.ReviewRecord, error) {
	return s.store.Get(ctx, channel, beerID)
}

// ApplyVote применяет голос к записи пива и возвращает новое значение счетчика
// down никогда не уводит счетчик ниже нуля
// Без существующей записи возвращает ErrNoPriorRecord
func (s *ReviewService) ApplyVote(ctx context.Context, channel, beerID string, direction VoteDirection) (int, error) {
	rec, err := s.store.Get(ctx, channel, beerID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return 0, ErrNoPriorRecord
		}
		return 0, fmt.Errorf("failed to get review record: %w", err)
	}

	votes := rec.Votes
	switch direction {
	case VoteDown:
		if votes > 0 {
			votes--
		}
	default:
		votes++
	}

	if err := s.store.SetVotes(ctx, channel, beerID, votes); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return 0, ErrNoPriorRecord
		}
		return 0, fmt.Errorf("failed to set votes: %w", err)
	}

	s.publishEvent(ctx, entity.BeerEvent{
		EventID:   uuid.NewString(),
		EventType: entity.EventVoteApplied,
		Channel:   channel,
		BeerID:    beerID,
		BeerName:  rec.Name,
		Votes:     votes,
		Timestamp: time.Now().UTC(),
	})

	return votes, nil
}

// publishEvent отправляет событие в Kafka
// Ошибка отправки не прерывает команду: запись уже сохранена
func (s *ReviewService) publishEvent(ctx context.Context, event entity.BeerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal beer event")
		return
	}
	if err := s.publisher.PublishMessage(ctx, event.BeerID, data); err != nil {
		logger.Warn().Err(err).Str("event_type", event.EventType).Msg("Failed to publish beer event")
	}
}
