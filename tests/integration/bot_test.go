//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"beerme/internal/app/beerme/brewerydb"
	"beerme/internal/app/beerme/entity"
	"beerme/internal/app/beerme/handler"
	"beerme/internal/app/beerme/repository"
	"beerme/internal/app/beerme/service"
	"beerme/pkg/logger"
)

type MockKafkaProducer struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockKafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKafkaProducer) Close() error { return nil }

type BotIntegrationTestSuite struct {
	suite.Suite
	redis         *miniredis.Miniredis
	redisClient   *goredis.Client
	catalogServer *httptest.Server
	router        *gin.Engine
	kafkaProducer *MockKafkaProducer
}

func TestBotIntegrationSuite(t *testing.T) {
	suite.Run(t, new(BotIntegrationTestSuite))
}

func (s *BotIntegrationTestSuite) SetupSuite() {
	logger.InitWithWriter("beerme-test", "error", io.Discard)
	gin.SetMode(gin.TestMode)

	var err error
	s.redis, err = miniredis.Run()
	s.Require().NoError(err)
	s.redisClient = goredis.NewClient(&goredis.Options{Addr: s.redis.Addr()})

	// Фейковый BreweryDB: отдает фиксированный каталог под любой запрос
	s.catalogServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/beer/random":
			fmt.Fprint(w, `{"status": "success", "data": {"id": "rnd1", "name": "Surprise Stout"}}`)
		case "/search":
			fmt.Fprint(w, `{"status": "success", "data": [
				{"id": "b1", "name": "Pliny the Elder", "abv": "8",
				 "style": {"name": "Imperial IPA"},
				 "breweries": [{"name": "Russian River", "established": "1997"}]},
				{"id": "b2", "name": "Pliny the Younger", "abv": "10.25",
				 "breweries": [{"name": "Russian River", "established": "1997"}]}
			]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	reviewStore := repository.NewRedisReviewStore(s.redisClient)
	mentionStore := repository.NewRedisMentionStore(s.redisClient)
	s.kafkaProducer = &MockKafkaProducer{Messages: make([][]byte, 0)}

	catalog := brewerydb.NewClient(s.catalogServer.URL, "test-key", 5)
	resolver := service.NewResolverService(catalog)
	reviews := service.NewReviewService(reviewStore, s.kafkaProducer)
	tracker := service.NewTrackerService(mentionStore, s.kafkaProducer)
	leaderboard := service.NewLeaderboardService(reviewStore, mentionStore)

	commands := handler.NewCommandHandler(catalog, resolver, reviews, tracker, leaderboard,
		5, []string{"name", "style", "brewery", "abv"})
	webhook := handler.NewWebhookHandler(commands)
	auth := handler.NewAuthMiddleware("")

	s.router = handler.SetupRoutes(webhook, auth)
}

func (s *BotIntegrationTestSuite) SetupTest() {
	s.redis.FlushAll()
	s.kafkaProducer.Messages = make([][]byte, 0)
	s.kafkaProducer.ExpectedCalls = nil
	s.kafkaProducer.Calls = nil
	s.kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func (s *BotIntegrationTestSuite) TearDownSuite() {
	s.catalogServer.Close()
	s.redis.Close()
}

func (s *BotIntegrationTestSuite) execute(text string) (int, entity.CommandResponse) {
	reqBody := entity.CommandRequest{Channel: "#beer", Author: "sdmac", Text: text}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest(http.MethodPost, "/command", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp entity.CommandResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w.Code, resp
}

func (s *BotIntegrationTestSuite) TestRandomCommand() {
	code, resp := s.execute("random")

	s.Equal(http.StatusOK, code)
	s.Require().Len(resp.Replies, 1)
	s.Contains(resp.Replies[0], "Surprise Stout")
}

func (s *BotIntegrationTestSuite) TestSearchCommand() {
	code, resp := s.execute("search pliny")

	s.Equal(http.StatusOK, code)
	s.Len(resp.Replies, 2)
}

func (s *BotIntegrationTestSuite) TestReviewAndVoteFlow() {
	code, resp := s.execute("review pliny the elder; 9; West coast classic")
	s.Equal(http.StatusOK, code)
	s.Require().Len(resp.Replies, 1)
	s.Contains(resp.Replies[0], "Review recorded for Pliny the Elder")

	_, resp = s.execute("upvote pliny the elder")
	s.Require().Len(resp.Replies, 1)
	s.Contains(resp.Replies[0], "1 votes")

	_, resp = s.execute("downvote pliny the elder")
	s.Contains(resp.Replies[0], "0 votes")
	_, resp = s.execute("downvote pliny the elder")
	s.Contains(resp.Replies[0], "0 votes")

	_, resp = s.execute("top")
	s.Require().Len(resp.Replies, 1)
	s.Contains(resp.Replies[0], "Pliny the Elder")

	// REVIEW_CREATED плюс три VOTE_APPLIED
	s.Len(s.kafkaProducer.Messages, 4)
}

func (s *BotIntegrationTestSuite) TestDescribeFeedsTracker() {
	_, resp := s.execute("describe younger")
	s.Require().Len(resp.Replies, 1)
	s.Contains(resp.Replies[0], "Pliny the Younger")

	_, resp = s.execute("tracker")
	s.Require().Len(resp.Replies, 1)
	s.Contains(resp.Replies[0], "Pliny the Younger")
	s.Contains(resp.Replies[0], "1 mentions")
}

func (s *BotIntegrationTestSuite) TestValidationError() {
	req, _ := http.NewRequest(http.MethodPost, "/command", bytes.NewBufferString(`{"channel": "#beer"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *BotIntegrationTestSuite) TestHealthCheck() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}
