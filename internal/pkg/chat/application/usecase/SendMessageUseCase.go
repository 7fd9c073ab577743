package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	feedport "go-inbox/internal/infrastructure/changefeed/port"
	chat "go-inbox/internal/pkg/chat/application/domain"
	repository "go-inbox/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
// ClientID is the sender's correlation id; resending the same one is
// answered with the already stored message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	SenderName     string
	Body           string
	Kind           chat.MessageKind
	ClientID       *string
}

// SendMessageUseCase persists a message and announces it on the change
// feed. A feed failure is logged; the stored message is still returned.
type SendMessageUseCase struct {
	Repo   repository.ChatRepository
	Feed   feedport.Publisher
	Logger *slog.Logger
}

func NewSendMessageUseCase(repo repository.ChatRepository, feed feedport.Publisher, logger *slog.Logger) *SendMessageUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendMessageUseCase{Repo: repo, Feed: feed, Logger: logger}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return nil, fmt.Errorf("conversationId and senderId are required")
	}

	msg, err := chat.NewMessage(chat.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		SenderName:     in.SenderName,
		Body:           in.Body,
		Kind:           in.Kind,
		ClientID:       in.ClientID,
	})
	if err != nil {
		return nil, err
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	stored, created, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if created && uc.Feed != nil {
		if err := PublishMessage(ctx, uc.Feed, stored); err != nil {
			uc.Logger.WarnContext(ctx, "chat: publish message", "message_id", stored.ID, "err", err)
		}
	}
	return &stored, nil
}

// PublishMessage announces a stored message to the conversation's room.
func PublishMessage(ctx context.Context, feed feedport.Publisher, m chat.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return feed.Publish(ctx, feedport.Event{
		Type:           feedport.EventMessageInserted,
		ConversationID: m.ConversationID,
		UserID:         m.SenderID,
		Data:           data,
	})
}
