package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	auth "go-inbox/internal/pkg/auth/application/domain"
	repository "go-inbox/internal/pkg/auth/persistence/repository/port"
)

type SignInInput struct {
	Email    string
	Password string
}

// SignInResult is a live session plus the bearer token naming it.
type SignInResult struct {
	Session auth.Session
	Token   string
}

// SignInUseCase checks credentials and opens a session for TTL.
type SignInUseCase struct {
	Users    repository.UserRepository
	Sessions repository.SessionRepository
	Hasher   PasswordHasher
	Tokens   TokenService
	TTL      time.Duration
	Now      func() time.Time
}

func NewSignInUseCase(users repository.UserRepository, sessions repository.SessionRepository, hasher PasswordHasher, tokens TokenService, ttl time.Duration) *SignInUseCase {
	return &SignInUseCase{Users: users, Sessions: sessions, Hasher: hasher, Tokens: tokens, TTL: ttl, Now: time.Now}
}

func (uc *SignInUseCase) Execute(ctx context.Context, in SignInInput) (*SignInResult, error) {
	email, err := auth.NormalizeEmail(in.Email)
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	u, err := uc.Users.FindByEmail(ctx, email)
	if errors.Is(err, auth.ErrUserNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !uc.Hasher.Compare(u.PasswordHash, in.Password) {
		return nil, auth.ErrInvalidCredentials
	}
	if !u.Confirmed() {
		return nil, auth.ErrEmailNotConfirmed
	}

	s := auth.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Email:     u.Email,
		FullName:  auth.DisplayName(u.FullName, u.Email),
		ExpiresAt: uc.Now().Add(uc.TTL).UTC(),
	}
	if err := uc.Sessions.Save(ctx, s, uc.TTL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	token, err := uc.Tokens.Issue(s.ID, s.UserID, uc.TTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &SignInResult{Session: s, Token: token}, nil
}
