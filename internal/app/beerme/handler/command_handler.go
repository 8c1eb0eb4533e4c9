package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"beerme/internal/app/beerme/entity"
	"beerme/internal/app/beerme/format"
	"beerme/internal/app/beerme/repository"
	"beerme/internal/app/beerme/service"
	"beerme/pkg/logger"
	"beerme/pkg/metrics"
)

// Ответы бота на неуспешные пути (реплики исходного плагина сохранены)
const (
	replyRandomFailed    = "The random beers only start after the first seven"
	replySearchFailed    = "You're searchin' for sumthin' that ain't there"
	replyNoMatches       = "Sorry bro, search results es no bueno"
	replyCapClamped      = "Nice try. Hope you can live with 10, Epicurus."
	replyBadNumber       = "Only integers in parentheses next time!"
	replyStorageFailed   = "The beer cellar is acting up, try again later"
	replyNothingToVoteOn = "Nothing to vote on yet - somebody has to review it first"
)

// maxResultCap - жесткий потолок числа результатов, задаваемого пользователем
const maxResultCap = 10

type ResolverInterface interface {
	Resolve(ctx context.Context, query string, maxResults int, scope service.MatchScope) ([]entity.Beer, error)
	ResolveOne(ctx context.Context, query string) (*entity.Beer, error)
}

type ReviewServiceInterface interface {
	SubmitReview(ctx context.Context, channel string, beer *entity.Beer, review entity.Review) (*entity.ReviewRecord, error)
	GetRecord(ctx context.Context, channel, beerID string) (*entity.ReviewRecord, error)
	ApplyVote(ctx context.Context, channel, beerID string, direction service.VoteDirection) (int, error)
}

type TrackerServiceInterface interface {
	RecordMention(ctx context.Context, channel string, beer *entity.Beer, ref entity.MentionRef) (*entity.MentionRecord, error)
}

type LeaderboardServiceInterface interface {
	TopRated(ctx context.Context, channel string) (*entity.RatingLeaderboard, error)
	MostMentioned(ctx context.Context, channel string) ([]entity.MentionedBeer, error)
}

// CommandHandler разбирает текст команды и маршрутизирует ее по сервисам
// Все ошибки ядра здесь превращаются в реплики для канала; наружу команда
// никогда не падает
type CommandHandler struct {
	catalog     service.BeerCatalog
	resolver    ResolverInterface
	reviews     ReviewServiceInterface
	tracker     TrackerServiceInterface
	leaderboard LeaderboardServiceInterface

	searchLimit  int
	searchFields []format.FieldKind
	renderer     format.Renderer
	validator    *validator.Validate
}

// NewCommandHandler создает обработчик команд
// searchLimit - число результатов поиска по умолчанию,
// searchFields - поля, показываемые в результатах поиска
func NewCommandHandler(
	catalog service.BeerCatalog,
	resolver ResolverInterface,
	reviews ReviewServiceInterface,
	tracker TrackerServiceInterface,
	leaderboard LeaderboardServiceInterface,
	searchLimit int,
	searchFields []string,
) *CommandHandler {
	return &CommandHandler{
		catalog:      catalog,
		resolver:     resolver,
		reviews:      reviews,
		tracker:      tracker,
		leaderboard:  leaderboard,
		searchLimit:  searchLimit,
		searchFields: format.ParseFields(searchFields),
		renderer:     format.Renderer{Colors: true},
		validator:    validator.New(),
	}
}

// Execute выполняет одну команду и возвращает реплики для канала
func (h *CommandHandler) Execute(ctx context.Context, req *entity.CommandRequest) []string {
	command, args := splitCommand(req.Text)

	var replies []string
	switch command {
	case "random", "beerme":
		replies = h.handleRandom(ctx, args)
	case "search":
		replies = h.handleSearch(ctx, req, args)
	case "describe":
		replies = h.handleDescribe(ctx, req, args)
	case "review":
		replies = h.handleReview(ctx, req, args)
	case "reviews":
		replies = h.handleReviews(ctx, req, args)
	case "top":
		replies = h.handleTop(ctx, req)
	case "upvote":
		replies = h.handleVote(ctx, req, args, service.VoteUp)
	case "downvote":
		replies = h.handleVote(ctx, req, args, service.VoteDown)
	case "tracker":
		replies = h.handleTracker(ctx, req)
	default:
		metrics.RecordCommand(command, "unknown")
		return []string{"Unknown command. Try: random, search, describe, review, reviews, top, upvote, downvote, tracker"}
	}

	metrics.RecordCommand(command, commandStatus(replies))
	return replies
}

func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	parts := strings.SplitN(text, " ", 2)
	command := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return command, ""
	}
	return command, strings.TrimSpace(parts[1])
}

// commandStatus грубо классифицирует исход для метрик
func commandStatus(replies []string) string {
	for _, r := range replies {
		switch r {
		case replyRandomFailed, replySearchFailed, replyNoMatches, replyStorageFailed:
			return "error"
		}
	}
	return "ok"
}

// handleRandom - random [field,...]
// Список полей через запятую, поле brewery включает withBreweries у каталога
func (h *CommandHandler) handleRandom(ctx context.Context, args string) []string {
	fields := []format.FieldKind{format.FieldName}
	if args != "" {
		fields = append(fields, format.ParseFields(strings.Split(args, ","))...)
	}

	beer, err := h.catalog.Random(ctx, format.NeedsBreweries(fields))
	if err != nil {
		logger.Warn().Err(err).Msg("Random beer lookup failed")
		return []string{replyRandomFailed}
	}

	return []string{h.renderer.Render(beer, fields)}
}

// handleSearch - search [beer|brewery] query [(N)]
func (h *CommandHandler) handleSearch(ctx context.Context, req *entity.CommandRequest, args string) []string {
	if args == "" {
		return []string{"Search for what, exactly?"}
	}

	scope := service.MatchBeer
	terms := strings.Fields(args)
	switch terms[0] {
	case "beer", "beers":
		terms = terms[1:]
	case "brewery", "breweries":
		scope = service.MatchBrewery
		terms = terms[1:]
	}

	var warnings []string
	maxNum := h.searchLimit
	query := make([]string, 0, len(terms))
	for _, term := range terms {
		if strings.HasPrefix(term, "(") && strings.HasSuffix(term, ")") {
			n, err := strconv.Atoi(term[1 : len(term)-1])
			if err != nil {
				// Плохое число не роняет команду: предупреждаем и оставляем
				// значение по умолчанию
				warnings = append(warnings, replyBadNumber)
				continue
			}
			if n > maxResultCap {
				warnings = append(warnings, replyCapClamped)
				n = maxResultCap
			}
			maxNum = n
			continue
		}
		query = append(query, term)
	}

	queryText := strings.Join(query, " ")
	if queryText == "" {
		return append(warnings, "Search for what, exactly?")
	}

	hits, err := h.resolver.Resolve(ctx, queryText, maxNum, scope)
	if err != nil {
		return append(warnings, h.resolveFailureReply(err))
	}

	// Поиск, сузившийся до одного пива, считается упоминанием - кормим трекер
	if len(hits) == 1 {
		h.recordMention(ctx, req, &hits[0])
	}

	for _, beer := range hits {
		warnings = append(warnings, h.renderer.Render(&beer, h.searchFields))
	}
	return warnings
}

// handleDescribe - describe name [(field,...)]
func (h *CommandHandler) handleDescribe(ctx context.Context, req *entity.CommandRequest, args string) []string {
	if args == "" {
		return []string{"Describe what, exactly?"}
	}

	fields := h.searchFields
	if open := strings.LastIndex(args, "("); open != -1 && strings.HasSuffix(args, ")") {
		requested := format.ParseFields(strings.Split(args[open+1:len(args)-1], ","))
		if len(requested) > 0 {
			fields = append([]format.FieldKind{format.FieldName}, requested...)
		}
		args = strings.TrimSpace(args[:open])
	}

	beer, err := h.resolver.ResolveOne(ctx, args)
	if err != nil {
		return []string{h.resolveFailureReply(err)}
	}

	h.recordMention(ctx, req, beer)

	return []string{h.renderer.Render(beer, fields)}
}

// handleReview - review name; rating; description
func (h *CommandHandler) handleReview(ctx context.Context, req *entity.CommandRequest, args string) []string {
	parts := strings.Split(args, ";")
	if len(parts) != 3 {
		return []string{"Couldn't parse that. Format: review <name>; <rating>; <description>"}
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return []string{"Couldn't parse that. Format: review <name>; <rating>; <description>"}
	}

	submission := entity.ReviewSubmission{
		BeerName:    strings.TrimSpace(parts[0]),
		Rating:      rating,
		Description: strings.TrimSpace(parts[2]),
	}
	if err := h.validator.Struct(submission); err != nil {
		return []string{"That review doesn't add up: name required, rating 0-10, description required"}
	}

	beer, err := h.resolver.ResolveOne(ctx, submission.BeerName)
	if err != nil {
		return []string{h.resolveFailureReply(err)}
	}

	review := entity.Review{
		Rating:      submission.Rating,
		Description: submission.Description,
		Author:      req.Author,
		Timestamp:   displayTime(),
	}

	rec, err := h.reviews.SubmitReview(ctx, req.Channel, beer, review)
	if err != nil {
		logger.Error().Err(err).Str("channel", req.Channel).Str("beer_id", beer.ID).Msg("Failed to store review")
		return []string{replyStorageFailed}
	}

	return []string{fmt.Sprintf("Review recorded for %s (%d reviews, %.1f avg)",
		rec.Name, len(rec.Reviews), rec.AverageRating())}
}

// handleReviews - reviews name
func (h *CommandHandler) handleReviews(ctx context.Context, req *entity.CommandRequest, args string) []string {
	if args == "" {
		return []string{"Reviews for what, exactly?"}
	}

	beer, err := h.resolver.ResolveOne(ctx, args)
	if err != nil {
		return []string{h.resolveFailureReply(err)}
	}

	rec, err := h.reviews.GetRecord(ctx, req.Channel, beer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return []string{fmt.Sprintf("No reviews yet for %s", beer.Name)}
		}
		logger.Error().Err(err).Str("channel", req.Channel).Str("beer_id", beer.ID).Msg("Failed to load reviews")
		return []string{replyStorageFailed}
	}

	replies := []string{fmt.Sprintf("%s [%s] - %d reviews, %.1f avg, %d votes",
		rec.Name, rec.BreweryName, len(rec.Reviews), rec.AverageRating(), rec.Votes)}
	for _, review := range rec.Reviews {
		replies = append(replies, fmt.Sprintf("  %.1f by %s (%s): %s",
			review.Rating, review.Author, review.Timestamp, review.Description))
	}
	return replies
}

// handleTop - top: топ-10 по средней оценке
func (h *CommandHandler) handleTop(ctx context.Context, req *entity.CommandRequest) []string {
	board, err := h.leaderboard.TopRated(ctx, req.Channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", req.Channel).Msg("Failed to build rating leaderboard")
		return []string{replyStorageFailed}
	}
	if len(board.Entries) == 0 {
		return []string{"Nothing's been reviewed here yet"}
	}

	replies := make([]string, 0, len(board.Entries))
	for i, e := range board.Entries {
		label := e.Name + " [" + e.BreweryName + "]"
		replies = append(replies, fmt.Sprintf("%2d. %-*s %.2f (%d reviews, %d votes)",
			i+1, board.ColumnWidth+2, label, e.Average, e.ReviewCount, e.Votes))
	}
	return replies
}

// handleVote - upvote/downvote name
func (h *CommandHandler) handleVote(ctx context.Context, req *entity.CommandRequest, args string, direction service.VoteDirection) []string {
	if args == "" {
		return []string{"Vote for what, exactly?"}
	}

	beer, err := h.resolver.ResolveOne(ctx, args)
	if err != nil {
		return []string{h.resolveFailureReply(err)}
	}

	votes, err := h.reviews.ApplyVote(ctx, req.Channel, beer.ID, direction)
	if err != nil {
		if errors.Is(err, service.ErrNoPriorRecord) {
			return []string{replyNothingToVoteOn}
		}
		logger.Error().Err(err).Str("channel", req.Channel).Str("beer_id", beer.ID).Msg("Failed to apply vote")
		return []string{replyStorageFailed}
	}

	return []string{fmt.Sprintf("%s now sits at %d votes", beer.Name, votes)}
}

// handleTracker - tracker: топ-10 по числу упоминаний
func (h *CommandHandler) handleTracker(ctx context.Context, req *entity.CommandRequest) []string {
	entries, err := h.leaderboard.MostMentioned(ctx, req.Channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", req.Channel).Msg("Failed to build mention leaderboard")
		return []string{replyStorageFailed}
	}
	if len(entries) == 0 {
		return []string{"Nobody's been talking beer here yet"}
	}

	replies := make([]string, 0, len(entries))
	for i, e := range entries {
		replies = append(replies, fmt.Sprintf("%2d. %s [%s] - %d mentions by %d drinkers",
			i+1, e.Name, e.BreweryName, e.Mentions, e.Mentioners))
	}
	return replies
}

// resolveFailureReply различает недоступный каталог и пустой результат фильтра
func (h *CommandHandler) resolveFailureReply(err error) string {
	if errors.Is(err, service.ErrNoMatches) {
		return replyNoMatches
	}
	return replySearchFailed
}

// recordMention пишет упоминание; ошибка трекера не мешает основной команде
func (h *CommandHandler) recordMention(ctx context.Context, req *entity.CommandRequest, beer *entity.Beer) {
	ref := entity.MentionRef{Author: req.Author, Timestamp: displayTime()}
	if _, err := h.tracker.RecordMention(ctx, req.Channel, beer, ref); err != nil {
		logger.Warn().Err(err).Str("channel", req.Channel).Str("beer_id", beer.ID).Msg("Failed to record mention")
	}
}

func displayTime() string {
	return time.Now().Format("2006-01-02 15:04")
}
