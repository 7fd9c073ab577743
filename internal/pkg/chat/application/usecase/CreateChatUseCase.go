package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	chat "go-inbox/internal/pkg/chat/application/domain"
	repository "go-inbox/internal/pkg/chat/persistence/repository/port"
)

// CreateChatInput carries the data to open a conversation. The creator is
// always linked, as owner, ahead of the other participants.
type CreateChatInput struct {
	Name           string
	Kind           chat.ConversationKind
	CreatorID      string
	ParticipantIDs []string
}

type CreateChatUseCase struct {
	Repo repository.ChatRepository
	Now  func() time.Time
}

func NewCreateChatUseCase(repo repository.ChatRepository) *CreateChatUseCase {
	return &CreateChatUseCase{Repo: repo, Now: time.Now}
}

// Execute persists a conversation and its participant links in one step.
func (uc *CreateChatUseCase) Execute(ctx context.Context, in CreateChatInput) (*chat.Conversation, error) {
	if in.CreatorID == "" {
		return nil, fmt.Errorf("creator is required")
	}
	conv, err := chat.NewConversation(in.Name, in.Kind, uc.Now())
	if err != nil {
		return nil, err
	}

	links := []chat.Participant{{UserID: in.CreatorID, Role: chat.ParticipantRoleOwner, JoinedAt: conv.CreatedAt}}
	seen := map[string]bool{in.CreatorID: true}
	for _, uid := range in.ParticipantIDs {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		links = append(links, chat.Participant{UserID: uid, Role: chat.ParticipantRoleMember, JoinedAt: conv.CreatedAt})
	}

	id, err := uc.Repo.CreateConversation(ctx, *conv, links)
	if errors.Is(err, chat.ErrUnknownUser) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	conv.ID = id

	return conv, nil
}
