package usecase

import (
	"context"
	"fmt"

	chat "go-inbox/internal/pkg/chat/application/domain"
	repository "go-inbox/internal/pkg/chat/persistence/repository/port"
)

type ListChatsInput struct {
	UserID string
}

// ListChatsUseCase returns the conversations a user participates in, in
// the order the user was linked to them.
type ListChatsUseCase struct {
	Repo repository.ChatRepository
}

func NewListChatsUseCase(repo repository.ChatRepository) *ListChatsUseCase {
	return &ListChatsUseCase{Repo: repo}
}

func (uc *ListChatsUseCase) Execute(ctx context.Context, in ListChatsInput) ([]chat.Conversation, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	convs, err := uc.Repo.ListConversationsByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return convs, nil
}
