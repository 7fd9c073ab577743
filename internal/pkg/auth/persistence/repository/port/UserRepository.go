package repository

import (
	"context"
	"time"

	auth "go-inbox/internal/pkg/auth/application/domain"
)

// UserRepository stores accounts. Lookups return auth.ErrUserNotFound
// when nothing matches.
type UserRepository interface {
	// Create returns auth.ErrUserExists when the email is taken.
	Create(ctx context.Context, u auth.User) (auth.User, error)
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	FindByConfirmationToken(ctx context.Context, token string) (*auth.User, error)
	// Confirm marks the user confirmed and clears the confirmation token.
	Confirm(ctx context.Context, id string, at time.Time) error
}
