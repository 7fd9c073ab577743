package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	auth "go-inbox/internal/pkg/auth/application/domain"
	"go-inbox/internal/pkg/auth/mailer"
	repository "go-inbox/internal/pkg/auth/persistence/repository/port"
)

type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

// SignUpResult reports the new account. ConfirmationSent is false when
// accounts are confirmed automatically.
type SignUpResult struct {
	User             auth.User
	ConfirmationSent bool
}

// SignUpUseCase registers an account and mails a confirmation link that
// points at PublicURL + "/auth/callback".
type SignUpUseCase struct {
	Users       repository.UserRepository
	Hasher      PasswordHasher
	Mailer      mailer.Mailer
	PublicURL   string
	AutoConfirm bool
	Now         func() time.Time
}

func NewSignUpUseCase(users repository.UserRepository, hasher PasswordHasher, m mailer.Mailer, publicURL string, autoConfirm bool) *SignUpUseCase {
	return &SignUpUseCase{Users: users, Hasher: hasher, Mailer: m, PublicURL: publicURL, AutoConfirm: autoConfirm, Now: time.Now}
}

func (uc *SignUpUseCase) Execute(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	email, err := auth.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := uc.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := auth.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     auth.DisplayName(in.FullName, email),
	}
	if uc.AutoConfirm {
		now := uc.Now().UTC()
		u.ConfirmedAt = &now
	} else {
		token := uuid.NewString()
		u.ConfirmationToken = &token
	}

	stored, err := uc.Users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if uc.AutoConfirm {
		return &SignUpResult{User: stored}, nil
	}

	link := strings.TrimRight(uc.PublicURL, "/") + "/auth/callback?token=" + url.QueryEscape(*u.ConfirmationToken)
	if err := uc.Mailer.SendConfirmation(ctx, email, link); err != nil {
		return nil, fmt.Errorf("send confirmation: %w", err)
	}
	return &SignUpResult{User: stored, ConfirmationSent: true}, nil
}
