package repository

import (
	"context"
	"testing"
	"time"

	"zaimka/internal/config"
	"zaimka/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { Close(client) })
	return NewRedisSessionRepository(client, time.Hour), mr
}

func testSession(token string) *models.Session {
	return &models.Session{
		Token:       token,
		UserID:      1,
		CompanySlug: "taiga",
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestRedisSessionRoundTrip(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	session := testSession("tok-1")
	require.NoError(t, repo.SetSession(ctx, session))

	got, err := repo.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "taiga", got.CompanySlug)

	require.NoError(t, repo.DeleteSession(ctx, "tok-1"))
	_, err = repo.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionExpiry(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetSession(ctx, testSession("tok-ttl")))

	mr.FastForward(2 * time.Hour)

	_, err := repo.GetSession(ctx, "tok-ttl")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisRateLimit(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "client-a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Window resets the counter.
	mr.FastForward(2 * time.Minute)
	allowed, err = repo.CheckRateLimit(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	repo := NewRedisSessionRepository(client, time.Hour)
	mr.Close()

	_, err := repo.GetSession(context.Background(), "tok")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	assert.NoError(t, Ping(context.Background(), client))

	mr.Close()
	assert.Error(t, Ping(context.Background(), client))
}
