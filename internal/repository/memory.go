package repository

import (
	"context"
	"sync"
	"time"

	"zaimka/internal/models"
)

type MemorySessionRepository struct {
	sessions   sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl: ttl,
	}
}

type sessionEntry struct {
	session   *models.Session
	expiresAt time.Time
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	val, ok := r.sessions.Load(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry := val.(*sessionEntry)
	if time.Now().After(entry.expiresAt) {
		r.sessions.Delete(token)
		return nil, ErrSessionNotFound
	}
	return entry.session, nil
}

func (r *MemorySessionRepository) SetSession(ctx context.Context, session *models.Session) error {
	expiresAt := time.Now().Add(r.ttl)
	if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(expiresAt) {
		expiresAt = session.ExpiresAt
	}
	r.sessions.Store(session.Token, &sessionEntry{session: session, expiresAt: expiresAt})
	return nil
}

func (r *MemorySessionRepository) DeleteSession(ctx context.Context, token string) error {
	r.sessions.Delete(token)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
