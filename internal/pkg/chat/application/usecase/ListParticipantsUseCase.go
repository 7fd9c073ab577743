package usecase

import (
	"context"
	"fmt"

	chat "go-inbox/internal/pkg/chat/application/domain"
	repository "go-inbox/internal/pkg/chat/persistence/repository/port"
)

// ListParticipantsInput names the conversation and the user asking; only
// participants may see the member list.
type ListParticipantsInput struct {
	ConversationID string
	UserID         string
}

// ListParticipantsUseCase returns user IDs for all participants in the conversation.
type ListParticipantsUseCase struct {
	Repo repository.ChatRepository
}

func NewListParticipantsUseCase(repo repository.ChatRepository) *ListParticipantsUseCase {
	return &ListParticipantsUseCase{Repo: repo}
}

func (uc *ListParticipantsUseCase) Execute(ctx context.Context, in ListParticipantsInput) ([]string, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("conversation_id is required")
	}

	ids, err := uc.Repo.ListParticipantIDs(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if in.UserID != "" {
		member := false
		for _, id := range ids {
			if id == in.UserID {
				member = true
				break
			}
		}
		if !member {
			return nil, chat.ErrNotParticipant
		}
	}
	return ids, nil
}
