package service

import (
	"context"
	"fmt"
	"sort"

	"beerme/internal/app/beerme/entity"
	"beerme/internal/app/beerme/repository"
)

const (
	// leaderboardLimit - верхняя граница размера любого топа
	leaderboardLimit = 10
	// columnPadding - фиксированный добор к ширине колонки имени при выравнивании
	columnPadding = 3
)

// LeaderboardService считает производные рейтинги по снимкам хранилищ
// Только чтение: безопасно вызывать параллельно с другими чтениями
type LeaderboardService struct {
	reviews  repository.ReviewStore
	mentions repository.MentionStore
}

// NewLeaderboardService создает новый сервис рейтингов
func NewLeaderboardService(reviews repository.ReviewStore, mentions repository.MentionStore) *LeaderboardService {
	return &LeaderboardService{
		reviews:  reviews,
		mentions: mentions,
	}
}

// TopRated строит топ по средней оценке: сортировка по (среднее, число отзывов)
// по убыванию, ничьи добиваются id пива по возрастанию, не больше 10 строк.
// Вместе с топом возвращается ширина колонки имени для выравнивания вывода
func (s *LeaderboardService) TopRated(ctx context.Context, channel string) (*entity.RatingLeaderboard, error) {
	records, err := s.reviews.GetAll(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to load review records: %w", err)
	}

	entries := make([]entity.RatedBeer, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entity.RatedBeer{
			BeerID:      rec.BeerID,
			Name:        rec.Name,
			BreweryName: rec.BreweryName,
			Average:     rec.AverageRating(),
			ReviewCount: len(rec.Reviews),
			Votes:       rec.Votes,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Average != entries[j].Average {
			return entries[i].Average > entries[j].Average
		}
		if entries[i].ReviewCount != entries[j].ReviewCount {
			return entries[i].ReviewCount > entries[j].ReviewCount
		}
		return entries[i].BeerID < entries[j].BeerID
	})

	if len(entries) > leaderboardLimit {
		entries = entries[:leaderboardLimit]
	}

	width := 0
	for _, e := range entries {
		if w := len(e.Name) + len(e.BreweryName); w > width {
			width = w
		}
	}

	return &entity.RatingLeaderboard{
		Entries:     entries,
		ColumnWidth: width + columnPadding,
	}, nil
}

// MostMentioned строит топ по числу упоминаний: сортировка по
// (упоминания, уникальные авторы) по убыванию, ничьи добиваются id пива
// по возрастанию, не больше 10 строк
func (s *LeaderboardService) MostMentioned(ctx context.Context, channel string) ([]entity.MentionedBeer, error) {
	records, err := s.mentions.GetAll(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to load mention records: %w", err)
	}

	entries := make([]entity.MentionedBeer, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entity.MentionedBeer{
			BeerID:      rec.BeerID,
			Name:        rec.Name,
			BreweryName: rec.BreweryName,
			Mentions:    len(rec.Refs),
			Mentioners:  rec.DistinctMentioners(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Mentions != entries[j].Mentions {
			return entries[i].Mentions > entries[j].Mentions
		}
		if entries[i].Mentioners != entries[j].Mentioners {
			return entries[i].Mentioners > entries[j].Mentioners
		}
		return entries[i].BeerID < entries[j].BeerID
	})

	if len(entries) > leaderboardLimit {
		entries = entries[:leaderboardLimit]
	}

	return entries, nil
}
