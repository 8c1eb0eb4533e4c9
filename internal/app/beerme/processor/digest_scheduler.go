package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"beerme/internal/app/beerme/entity"
	"beerme/internal/app/beerme/infrastructure"
	"beerme/pkg/logger"
)

// LeaderboardSource - то, что умеет LeaderboardService
type LeaderboardSource interface {
	TopRated(ctx context.Context, channel string) (*entity.RatingLeaderboard, error)
	MostMentioned(ctx context.Context, channel string) ([]entity.MentionedBeer, error)
}

// DigestScheduler по расписанию публикует дайджест топов каналов в Kafka
// Потребители (например, сам чат-хост) могут постить его в канал
type DigestScheduler struct {
	cron        *cron.Cron
	leaderboard LeaderboardSource
	publisher   infrastructure.MessagePublisher
	channels    []string
}

// NewDigestScheduler создает планировщик дайджестов для набора каналов
func NewDigestScheduler(leaderboard LeaderboardSource, publisher infrastructure.MessagePublisher, channels []string) *DigestScheduler {
	return &DigestScheduler{
		cron:        cron.New(),
		leaderboard: leaderboard,
		publisher:   publisher,
		channels:    channels,
	}
}

// Start регистрирует cron-задачу и запускает планировщик
func (s *DigestScheduler) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.publishDigests(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule digest job: %w", err)
	}

	s.cron.Start()
	logger.Info().Str("schedule", schedule).Int("channels", len(s.channels)).Msg("Digest scheduler started")
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущей задачи
func (s *DigestScheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("Digest scheduler stopped")
}

func (s *DigestScheduler) publishDigests(ctx context.Context) {
	for _, channel := range s.channels {
		if err := s.publishChannelDigest(ctx, channel); err != nil {
			logger.Error().Err(err).Str("channel", channel).Msg("Failed to publish leaderboard digest")
		}
	}
}

func (s *DigestScheduler) publishChannelDigest(ctx context.Context, channel string) error {
	board, err := s.leaderboard.TopRated(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to build rating digest: %w", err)
	}
	mentions, err := s.leaderboard.MostMentioned(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to build mention digest: %w", err)
	}

	if len(board.Entries) == 0 && len(mentions) == 0 {
		return nil
	}

	event := entity.BeerEvent{
		EventID:   uuid.NewString(),
		EventType: entity.EventLeaderboardDigest,
		Channel:   channel,
		Payload:   renderDigest(board, mentions),
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal digest event: %w", err)
	}

	if err := s.publisher.PublishMessage(ctx, channel, data); err != nil {
		return fmt.Errorf("failed to publish digest event: %w", err)
	}

	logger.Info().Str("channel", channel).Msg("Published leaderboard digest")
	return nil
}

func renderDigest(board *entity.RatingLeaderboard, mentions []entity.MentionedBeer) string {
	var b strings.Builder
	if len(board.Entries) > 0 {
		b.WriteString("Top rated:\n")
		for i, e := range board.Entries {
			fmt.Fprintf(&b, "%2d. %s [%s] %.2f (%d reviews)\n", i+1, e.Name, e.BreweryName, e.Average, e.ReviewCount)
		}
	}
	if len(mentions) > 0 {
		b.WriteString("Most mentioned:\n")
		for i, e := range mentions {
			fmt.Fprintf(&b, "%2d. %s [%s] %d mentions\n", i+1, e.Name, e.BreweryName, e.Mentions)
		}
	}
	return b.String()
}
