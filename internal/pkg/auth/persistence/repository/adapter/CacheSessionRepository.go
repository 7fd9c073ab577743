package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cacheport "go-inbox/internal/infrastructure/cache/port"
	auth "go-inbox/internal/pkg/auth/application/domain"
	repository "go-inbox/internal/pkg/auth/persistence/repository/port"
)

// CacheSessionRepository stores sessions as JSON under "session:<id>" and
// relies on the cache TTL for expiry.
type CacheSessionRepository struct {
	cache cacheport.Cache
}

func NewCacheSessionRepository(c cacheport.Cache) *CacheSessionRepository {
	return &CacheSessionRepository{cache: c}
}

var _ repository.SessionRepository = (*CacheSessionRepository)(nil)

func sessionKey(id string) string { return "session:" + id }

func (r *CacheSessionRepository) Save(ctx context.Context, s auth.Session, ttl time.Duration) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.cache.Set(ctx, sessionKey(s.ID), string(b), ttl)
}

func (r *CacheSessionRepository) Get(ctx context.Context, id string) (*auth.Session, error) {
	raw, err := r.cache.Get(ctx, sessionKey(id))
	if errors.Is(err, cacheport.ErrMiss) {
		return nil, auth.ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var s auth.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *CacheSessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.cache.Del(ctx, sessionKey(id))
	return err
}
