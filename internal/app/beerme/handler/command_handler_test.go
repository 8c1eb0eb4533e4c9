package handler

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"beerme/internal/app/beerme/entity"
	"beerme/internal/app/beerme/repository"
	"beerme/internal/app/beerme/repository/mocks"
	"beerme/internal/app/beerme/service"
	"beerme/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("beerme-test", "error", io.Discard)
	os.Exit(m.Run())
}

// botFixture собирает обработчик на реальных сервисах поверх файловых
// хранилищ и моков каталога с кафкой
type botFixture struct {
	handler   *CommandHandler
	catalog   *mocks.MockBeerCatalog
	publisher *mocks.MockMessagePublisher
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()

	catalog := new(mocks.MockBeerCatalog)
	publisher := new(mocks.MockMessagePublisher)
	publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	reviewStore, err := repository.NewFileReviewStore(t.TempDir())
	require.NoError(t, err)
	mentionStore, err := repository.NewFileMentionStore(t.TempDir())
	require.NoError(t, err)

	resolver := service.NewResolverService(catalog)
	reviews := service.NewReviewService(reviewStore, publisher)
	tracker := service.NewTrackerService(mentionStore, publisher)
	leaderboard := service.NewLeaderboardService(reviewStore, mentionStore)

	h := NewCommandHandler(catalog, resolver, reviews, tracker, leaderboard,
		5, []string{"name", "style", "brewery", "abv"})
	// Цветовые коды выключены, чтобы сравнивать реплики как есть
	h.renderer.Colors = false

	return &botFixture{handler: h, catalog: catalog, publisher: publisher}
}

func (f *botFixture) execute(text string) []string {
	req := &entity.CommandRequest{Channel: "#beer", Author: "sdmac", Text: text}
	return f.handler.Execute(context.Background(), req)
}

func catalogBeers() []entity.Beer {
	return []entity.Beer{
		{ID: "b1", Name: "Pliny the Elder", ABV: "8",
			Style:     &entity.Style{Name: "Imperial IPA"},
			Breweries: []entity.Brewery{{Name: "Russian River", Established: "1997"}}},
		{ID: "b2", Name: "Pliny the Younger", ABV: "10.25",
			Breweries: []entity.Brewery{{Name: "Russian River", Established: "1997"}}},
		{ID: "b3", Name: "Arrogant Bastard", ABV: "7.2",
			Breweries: []entity.Brewery{{Name: "Stone Brewing"}}},
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	f := newBotFixture(t)

	replies := f.execute("cheers everyone")

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Unknown command")
}

func TestRandom_RendersDefaultName(t *testing.T) {
	f := newBotFixture(t)
	beer := catalogBeers()[0]
	f.catalog.On("Random", mock.Anything, false).Return(&beer, nil)

	replies := f.execute("random")

	assert.Equal(t, []string{"Pliny the Elder"}, replies)
}

func TestRandom_BreweryFieldTurnsOnWithBreweries(t *testing.T) {
	f := newBotFixture(t)
	beer := catalogBeers()[0]
	f.catalog.On("Random", mock.Anything, true).Return(&beer, nil)

	replies := f.execute("beerme brewery,abv")

	assert.Equal(t, []string{"Pliny the Elder [Russian River, est. 1997] [8% ABV]"}, replies)
}

func TestRandom_CatalogDown(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Random", mock.Anything, false).Return(nil, assert.AnError)

	replies := f.execute("random")

	assert.Equal(t, []string{"The random beers only start after the first seven"}, replies)
}

func TestSearch_RendersHits(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "pliny").Return(catalogBeers(), nil)

	replies := f.execute("search pliny")

	require.Len(t, replies, 2)
	assert.Equal(t, "Pliny the Elder [Imperial IPA] [Russian River, est. 1997] [8% ABV]", replies[0])
	assert.Equal(t, "Pliny the Younger [Russian River, est. 1997] [10.25% ABV]", replies[1])
}

func TestSearch_BadNumberWarnsAndKeepsDefault(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "pliny").Return(catalogBeers(), nil)

	replies := f.execute("search pliny (abc)")

	require.Len(t, replies, 3)
	assert.Equal(t, "Only integers in parentheses next time!", replies[0])
	assert.Contains(t, replies[1], "Pliny the Elder")
}

func TestSearch_ClampsAtTen(t *testing.T) {
	f := newBotFixture(t)
	beers := make([]entity.Beer, 0, 15)
	for i := 0; i < 15; i++ {
		beers = append(beers, entity.Beer{ID: string(rune('a' + i)), Name: "Pliny Variant"})
	}
	f.catalog.On("Search", mock.Anything, "pliny").Return(beers, nil)

	replies := f.execute("search pliny (15)")

	require.Len(t, replies, 11)
	assert.Equal(t, "Nice try. Hope you can live with 10, Epicurus.", replies[0])
}

func TestSearch_NoMatches(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "unicorn").Return([]entity.Beer{}, nil)

	replies := f.execute("search unicorn")

	assert.Equal(t, []string{"Sorry bro, search results es no bueno"}, replies)
}

func TestSearch_CatalogDown(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "pliny").Return(nil, assert.AnError)

	replies := f.execute("search pliny")

	assert.Equal(t, []string{"You're searchin' for sumthin' that ain't there"}, replies)
}

func TestSearch_SingleHitFeedsTracker(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "arrogant bastard").Return(catalogBeers(), nil)

	f.execute("search arrogant bastard")
	f.execute("search arrogant bastard")

	replies := f.execute("tracker")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Arrogant Bastard")
	assert.Contains(t, replies[0], "2 mentions by 1 drinkers")
}

func TestDescribe_FieldOverride(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "pliny the elder").Return(catalogBeers(), nil)

	replies := f.execute("describe pliny the elder (style,abv)")

	assert.Equal(t, []string{"Pliny the Elder [Imperial IPA] [8% ABV]"}, replies)
}

func TestReview_BadFormat(t *testing.T) {
	f := newBotFixture(t)

	replies := f.execute("review pliny; not-a-number; fine beer")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Couldn't parse that")

	replies = f.execute("review just a name without parts")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Couldn't parse that")
}

func TestReview_RatingOutOfRange(t *testing.T) {
	f := newBotFixture(t)

	replies := f.execute("review pliny the elder; 11; too good")

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "rating 0-10")
}

func TestReviewVoteFlow(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "pliny the elder").Return(catalogBeers(), nil)

	replies := f.execute("review pliny the elder; 9; West coast perfection")
	require.Len(t, replies, 1)
	assert.Equal(t, "Review recorded for Pliny the Elder (1 reviews, 9.0 avg)", replies[0])

	replies = f.execute("review pliny the elder; 7; Still good on a Tuesday")
	require.Len(t, replies, 1)
	assert.Equal(t, "Review recorded for Pliny the Elder (2 reviews, 8.0 avg)", replies[0])

	replies = f.execute("reviews pliny the elder")
	require.Len(t, replies, 3)
	assert.Contains(t, replies[0], "2 reviews, 8.0 avg, 0 votes")
	assert.Contains(t, replies[1], "West coast perfection")
	assert.Contains(t, replies[2], "Still good on a Tuesday")

	replies = f.execute("upvote pliny the elder")
	assert.Equal(t, []string{"Pliny the Elder now sits at 1 votes"}, replies)

	// Минус ниже нуля не уходит
	f.execute("downvote pliny the elder")
	replies = f.execute("downvote pliny the elder")
	assert.Equal(t, []string{"Pliny the Elder now sits at 0 votes"}, replies)
	replies = f.execute("downvote pliny the elder")
	assert.Equal(t, []string{"Pliny the Elder now sits at 0 votes"}, replies)
}

func TestVote_NothingReviewedYet(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "arrogant bastard").Return(catalogBeers(), nil)

	replies := f.execute("upvote arrogant bastard")

	assert.Equal(t, []string{"Nothing to vote on yet - somebody has to review it first"}, replies)
}

func TestReviews_NoneYet(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "arrogant bastard").Return(catalogBeers(), nil)

	replies := f.execute("reviews arrogant bastard")

	assert.Equal(t, []string{"No reviews yet for Arrogant Bastard"}, replies)
}

func TestTop_RanksByAverage(t *testing.T) {
	f := newBotFixture(t)
	f.catalog.On("Search", mock.Anything, "pliny the elder").Return(catalogBeers(), nil)
	f.catalog.On("Search", mock.Anything, "arrogant bastard").Return(catalogBeers(), nil)

	f.execute("review pliny the elder; 9; great")
	f.execute("review arrogant bastard; 6; aggressive")

	replies := f.execute("top")

	require.Len(t, replies, 2)
	assert.Contains(t, replies[0], "Pliny the Elder")
	assert.Contains(t, replies[0], "9.00")
	assert.Contains(t, replies[1], "Arrogant Bastard")
	assert.Contains(t, replies[1], "6.00")
}

func TestTop_Empty(t *testing.T) {
	f := newBotFixture(t)

	replies := f.execute("top")

	assert.Equal(t, []string{"Nothing's been reviewed here yet"}, replies)
}

func TestTracker_Empty(t *testing.T) {
	f := newBotFixture(t)

	replies := f.execute("tracker")

	assert.Equal(t, []string{"Nobody's been talking beer here yet"}, replies)
}
