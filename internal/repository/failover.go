package repository

import (
	"context"
	"sync/atomic"
	"time"

	"zaimka/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSessionRepository serves from the primary repository and falls back
// to the secondary when the primary errors, probing the primary again after a
// minute.
type FailoverSessionRepository struct {
	primary   SessionRepository
	fallback  SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSessionRepository(primary, fallback SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if !r.isDown.Load() {
		session, err := r.primary.GetSession(ctx, token)
		if err == nil || err == ErrSessionNotFound {
			return session, err
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		session, err := r.primary.GetSession(ctx, token)
		if err == nil || err == ErrSessionNotFound {
			r.isDown.Store(false)
			return session, err
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetSession(ctx, token)
}

func (r *FailoverSessionRepository) SetSession(ctx context.Context, session *models.Session) error {
	if !r.isDown.Load() {
		err := r.primary.SetSession(ctx, session)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSession(ctx, session)
}

func (r *FailoverSessionRepository) DeleteSession(ctx context.Context, token string) error {
	if !r.isDown.Load() {
		err := r.primary.DeleteSession(ctx, token)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.DeleteSession(ctx, token)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}
