package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	chat "go-inbox/internal/pkg/chat/application/domain"
	repository "go-inbox/internal/pkg/chat/persistence/repository/port"
)

// MemoryChatRepository keeps everything in process memory. It backs the
// use case and controller tests and mirrors the Postgres adapter's
// ordering and idempotency rules.
type MemoryChatRepository struct {
	mu            sync.RWMutex
	conversations map[string]chat.Conversation
	participants  []chat.Participant
	messages      map[string][]chat.Message // conversationID -> messages in insert order

	// FailNext, when set, is returned once by the next call.
	FailNext error
	// KnownUsers, when set, limits participant links to these user ids.
	KnownUsers map[string]bool
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		conversations: make(map[string]chat.Conversation),
		messages:      make(map[string][]chat.Message),
	}
}

var _ repository.ChatRepository = (*MemoryChatRepository)(nil)

func (r *MemoryChatRepository) takeFailure() error {
	err := r.FailNext
	r.FailNext = nil
	return err
}

func (r *MemoryChatRepository) CreateConversation(_ context.Context, c chat.Conversation, members []chat.Participant) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return "", err
	}
	if r.KnownUsers != nil {
		for _, p := range members {
			if !r.KnownUsers[p.UserID] {
				return "", chat.ErrUnknownUser
			}
		}
	}

	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.conversations[c.ID] = c
	linked := make(map[string]bool, len(members))
	for _, p := range members {
		if linked[p.UserID] {
			continue
		}
		linked[p.UserID] = true
		p.ConversationID = c.ID
		if p.JoinedAt.IsZero() {
			p.JoinedAt = time.Now().UTC()
		}
		r.participants = append(r.participants, p)
	}
	return c.ID, nil
}

func (r *MemoryChatRepository) ListConversationsByUser(_ context.Context, userID string) ([]chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	out := make([]chat.Conversation, 0)
	for _, p := range r.participants {
		if p.UserID == userID {
			out = append(out, r.conversations[p.ConversationID])
		}
	}
	return out, nil
}

func (r *MemoryChatRepository) GetConversation(_ context.Context, conversationID string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	c, ok := r.conversations[conversationID]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return &c, nil
}

func (r *MemoryChatRepository) IsParticipant(_ context.Context, conversationID string, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return false, err
	}
	for _, p := range r.participants {
		if p.ConversationID == conversationID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryChatRepository) ListParticipantIDs(_ context.Context, conversationID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	for _, p := range r.participants {
		if p.ConversationID == conversationID {
			ids = append(ids, p.UserID)
		}
	}
	return ids, nil
}

func (r *MemoryChatRepository) SaveMessage(_ context.Context, m chat.Message) (chat.Message, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return chat.Message{}, false, err
	}
	if m.ClientID != nil {
		for _, existing := range r.messages[m.ConversationID] {
			if existing.SenderID == m.SenderID && existing.ClientID != nil && *existing.ClientID == *m.ClientID {
				return existing, false, nil
			}
		}
	}
	m.ID = uuid.NewString()
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return m, true, nil
}

func (r *MemoryChatRepository) GetMessagesByConversation(_ context.Context, conversationID string) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	msgs := append([]chat.Message{}, r.messages[conversationID]...)
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}
