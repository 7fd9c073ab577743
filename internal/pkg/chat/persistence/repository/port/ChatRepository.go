package repository

import (
	"context"

	chat "go-inbox/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for the chat domain.
// Conversations, participant links and messages are insert-only.
type ChatRepository interface {
	// CreateConversation stores c together with its participant links, all
	// or nothing. A link to a user that does not exist fails the whole
	// call with chat.ErrUnknownUser.
	CreateConversation(ctx context.Context, c chat.Conversation, members []chat.Participant) (string, error)

	// ListConversationsByUser returns the user's conversations in the order
	// the user was linked to them. GetConversation returns chat.ErrNotFound
	// for unknown ids.
	ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, error)

	IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error)
	ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error)

	// SaveMessage inserts m. When the sender already stored m.ClientID in
	// the conversation that row is returned with created=false.
	SaveMessage(ctx context.Context, m chat.Message) (stored chat.Message, created bool, err error)
	// GetMessagesByConversation returns every message ordered by
	// creation time ascending.
	GetMessagesByConversation(ctx context.Context, conversationID string) ([]chat.Message, error)
}
