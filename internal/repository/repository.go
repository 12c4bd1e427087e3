package repository

import (
	"context"
	"errors"
	"time"

	"zaimka/internal/models"
)

// ErrSessionNotFound is returned when a bearer token has no live session.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository holds owner sessions and public rate-limit counters.
// Implementations: Redis (primary), in-memory (fallback), failover wrapper.
type SessionRepository interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
