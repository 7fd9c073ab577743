package chat

import (
	"strings"
	"time"
)

// ConversationKind distinguishes one-to-one threads from groups.
type ConversationKind string

const (
	ConversationIndividual ConversationKind = "individual"
	ConversationGroup      ConversationKind = "group"
)

func (k ConversationKind) Valid() bool {
	return k == ConversationIndividual || k == ConversationGroup
}

// Conversation is a named thread. It is created once and never updated.
type Conversation struct {
	ID        string           `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Kind      ConversationKind `db:"kind" json:"type"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// NewConversation validates and normalizes a conversation about to be
// created. An empty kind defaults to individual.
func NewConversation(name string, kind ConversationKind, now time.Time) (*Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if kind == "" {
		kind = ConversationIndividual
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	return &Conversation{Name: name, Kind: kind, CreatedAt: now.UTC()}, nil
}
