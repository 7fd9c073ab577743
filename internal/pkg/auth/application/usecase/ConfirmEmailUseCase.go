package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	auth "go-inbox/internal/pkg/auth/application/domain"
	repository "go-inbox/internal/pkg/auth/persistence/repository/port"
)

// DefaultTokenTTL bounds how long a confirmation link stays valid after
// sign up.
const DefaultTokenTTL = 24 * time.Hour

// ConfirmEmailUseCase redeems the token from a confirmation link. Tokens
// are single use and expire TokenTTL after the account was created.
type ConfirmEmailUseCase struct {
	Users    repository.UserRepository
	TokenTTL time.Duration
	Now      func() time.Time
}

func NewConfirmEmailUseCase(users repository.UserRepository) *ConfirmEmailUseCase {
	return &ConfirmEmailUseCase{Users: users, TokenTTL: DefaultTokenTTL, Now: time.Now}
}

func (uc *ConfirmEmailUseCase) Execute(ctx context.Context, token string) error {
	if token == "" {
		return auth.ErrInvalidToken
	}
	u, err := uc.Users.FindByConfirmationToken(ctx, token)
	if errors.Is(err, auth.ErrUserNotFound) {
		return auth.ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	now := uc.Now().UTC()
	if uc.TokenTTL > 0 && now.After(u.CreatedAt.Add(uc.TokenTTL)) {
		return auth.ErrInvalidToken
	}
	if err := uc.Users.Confirm(ctx, u.ID, now); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
