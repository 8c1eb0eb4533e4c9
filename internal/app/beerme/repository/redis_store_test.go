package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beerme/internal/app/beerme/entity"
)

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisReviewStore_UpsertAndGet(t *testing.T) {
	store := NewRedisReviewStore(newTestRedis(t))
	ctx := context.Background()

	review := entity.Review{Rating: 9, Description: "hop bomb", Author: "sdmac", Timestamp: "2026-08-30 19:00"}
	created, err := store.UpsertReview(ctx, "#beer", "oTaBU8", "Pliny the Elder", "Russian River", review)
	require.NoError(t, err)
	assert.Equal(t, "sdmac", created.FirstReviewer)
	assert.Equal(t, 0, created.Votes)

	rec, err := store.Get(ctx, "#beer", "oTaBU8")
	require.NoError(t, err)
	assert.Equal(t, "Pliny the Elder", rec.Name)
	require.Len(t, rec.Reviews, 1)
	assert.Equal(t, review, rec.Reviews[0])
}

func TestRedisReviewStore_UpsertAppendsKeepsSnapshot(t *testing.T) {
	store := NewRedisReviewStore(newTestRedis(t))
	ctx := context.Background()

	_, err := store.UpsertReview(ctx, "#beer", "b1", "Beer", "Brew", entity.Review{Rating: 8, Author: "alice", Timestamp: "t1"})
	require.NoError(t, err)
	rec, err := store.UpsertReview(ctx, "#beer", "b1", "other", "other", entity.Review{Rating: 4, Author: "bob", Timestamp: "t2"})
	require.NoError(t, err)

	require.Len(t, rec.Reviews, 2)
	assert.Equal(t, "alice", rec.Reviews[0].Author)
	assert.Equal(t, "bob", rec.Reviews[1].Author)
	assert.Equal(t, "Beer", rec.Name)
	assert.Equal(t, "alice", rec.FirstReviewer)
}

func TestRedisReviewStore_GetNotFound(t *testing.T) {
	store := NewRedisReviewStore(newTestRedis(t))

	_, err := store.Get(context.Background(), "#beer", "missing")

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRedisReviewStore_SetVotes(t *testing.T) {
	store := NewRedisReviewStore(newTestRedis(t))
	ctx := context.Background()

	_, err := store.UpsertReview(ctx, "#beer", "b1", "Beer", "Brew", entity.Review{Rating: 7, Author: "a"})
	require.NoError(t, err)

	require.NoError(t, store.SetVotes(ctx, "#beer", "b1", 3))

	rec, err := store.Get(ctx, "#beer", "b1")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Votes)

	assert.ErrorIs(t, store.SetVotes(ctx, "#beer", "missing", 1), ErrRecordNotFound)
}

func TestRedisReviewStore_GetAllScoped(t *testing.T) {
	store := NewRedisReviewStore(newTestRedis(t))
	ctx := context.Background()

	_, err := store.UpsertReview(ctx, "#beer", "b1", "Beer One", "Brew", entity.Review{Rating: 7, Author: "a"})
	require.NoError(t, err)
	_, err = store.UpsertReview(ctx, "#beer", "b2", "Beer Two", "Brew", entity.Review{Rating: 5, Author: "b"})
	require.NoError(t, err)
	_, err = store.UpsertReview(ctx, "#wine", "b3", "Not Here", "Brew", entity.Review{Rating: 2, Author: "c"})
	require.NoError(t, err)

	all, err := store.GetAll(ctx, "#beer")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Beer One", all["b1"].Name)
	assert.Equal(t, "Beer Two", all["b2"].Name)
}

func TestRedisMentionStore_UpsertAndGetAll(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisMentionStore(client)
	ctx := context.Background()

	_, err := store.UpsertMention(ctx, "#beer", "b1", "Beer", "Brew", entity.MentionRef{Author: "alice", Timestamp: "t1"})
	require.NoError(t, err)
	rec, err := store.UpsertMention(ctx, "#beer", "b1", "other", "other", entity.MentionRef{Author: "alice", Timestamp: "t2"})
	require.NoError(t, err)

	require.Len(t, rec.Refs, 2)
	assert.Equal(t, "Beer", rec.Name)
	assert.Equal(t, 1, rec.DistinctMentioners())

	all, err := store.GetAll(ctx, "#beer")
	require.NoError(t, err)
	require.Len(t, all, 1)

	// Упоминания не пересекаются с отзывами того же канала
	reviews := NewRedisReviewStore(client)
	_, err = reviews.Get(ctx, "#beer", "b1")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
