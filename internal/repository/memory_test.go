package repository

import (
	"context"
	"testing"
	"time"

	"zaimka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRoundTrip(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.SetSession(ctx, testSession("tok-1")))

	got, err := repo.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "taiga", got.CompanySlug)

	require.NoError(t, repo.DeleteSession(ctx, "tok-1"))
	_, err = repo.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionExpiry(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	session := &models.Session{
		Token:     "tok-expired",
		UserID:    2,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, repo.SetSession(ctx, session))

	_, err := repo.GetSession(ctx, "tok-expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryRateLimit(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "client-b", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, "client-b", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different client has its own window.
	allowed, err = repo.CheckRateLimit(ctx, "client-c", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
