package repository

import (
	"context"
	"time"

	auth "go-inbox/internal/pkg/auth/application/domain"
)

// SessionRepository keeps live sessions. A missing or expired session is
// reported as auth.ErrNoSession.
type SessionRepository interface {
	Save(ctx context.Context, s auth.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*auth.Session, error)
	Delete(ctx context.Context, id string) error
}
