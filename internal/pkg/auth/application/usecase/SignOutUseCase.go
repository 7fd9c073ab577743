package usecase

import (
	"context"
	"fmt"

	repository "go-inbox/internal/pkg/auth/persistence/repository/port"
)

// SignOutUseCase revokes a session. Revoking an unknown session is not an error.
type SignOutUseCase struct {
	Sessions repository.SessionRepository
}

func NewSignOutUseCase(sessions repository.SessionRepository) *SignOutUseCase {
	return &SignOutUseCase{Sessions: sessions}
}

func (uc *SignOutUseCase) Execute(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := uc.Sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
