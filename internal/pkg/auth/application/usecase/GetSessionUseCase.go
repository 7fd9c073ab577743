package usecase

import (
	"context"
	"fmt"
	"time"

	auth "go-inbox/internal/pkg/auth/application/domain"
	repository "go-inbox/internal/pkg/auth/persistence/repository/port"
)

// GetSessionUseCase resolves a bearer token into its session. Any failure,
// bad token or store error alike, is reported as auth.ErrNoSession with
// the cause wrapped.
type GetSessionUseCase struct {
	Sessions repository.SessionRepository
	Tokens   TokenService
	Now      func() time.Time
}

func NewGetSessionUseCase(sessions repository.SessionRepository, tokens TokenService) *GetSessionUseCase {
	return &GetSessionUseCase{Sessions: sessions, Tokens: tokens, Now: time.Now}
}

func (uc *GetSessionUseCase) Execute(ctx context.Context, token string) (*auth.Session, error) {
	if token == "" {
		return nil, auth.ErrNoSession
	}
	sid, err := uc.Tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrNoSession, err)
	}
	s, err := uc.Sessions.Get(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrNoSession, err)
	}
	if s.Expired(uc.Now()) {
		return nil, auth.ErrNoSession
	}
	return s, nil
}
