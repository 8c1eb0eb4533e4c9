package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"beerme/internal/app/beerme/entity"
	"beerme/internal/app/beerme/infrastructure"
	"beerme/internal/app/beerme/repository"
	"beerme/pkg/logger"
)

// TrackerService ведет учет упоминаний пива в канале
// Упоминание пишется при каждом успешно дизамбигуированном поиске
type TrackerService struct {
	store     repository.MentionStore
	publisher infrastructure.MessagePublisher
}

// NewTrackerService создает новый сервис трекера упоминаний
func NewTrackerService(store repository.MentionStore, publisher infrastructure.MessagePublisher) *TrackerService {
	return &TrackerService{
		store:     store,
		publisher: publisher,
	}
}

// RecordMention дописывает упоминание пива (создавая запись при первом)
// и отправляет событие MENTION_RECORDED
func (s *TrackerService) RecordMention(ctx context.Context, channel string, beer *entity.Beer, ref entity.MentionRef) (*entity.MentionRecord, error) {
	rec, err := s.store.UpsertMention(ctx, channel, beer.ID, beer.Name, beer.PrimaryBrewery(), ref)
	if err != nil {
		return nil, fmt.Errorf("failed to record mention: %w", err)
	}

	event := entity.BeerEvent{
		EventID:   uuid.NewString(),
		EventType: entity.EventMentionRecorded,
		Channel:   channel,
		BeerID:    beer.ID,
		BeerName:  beer.Name,
		Author:    ref.Author,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to marshal mention event")
		return rec, nil
	}
	if err := s.publisher.PublishMessage(ctx, beer.ID, data); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish mention event")
	}

	return rec, nil
}
