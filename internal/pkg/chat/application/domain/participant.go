package chat

import "time"

// ParticipantRole expresses the role within a conversation.
// 0 = member; 1 = owner (the user who created it).
type ParticipantRole int16

const (
	ParticipantRoleMember ParticipantRole = 0
	ParticipantRoleOwner  ParticipantRole = 1
)

// Participant links a user to a conversation and grants visibility.
// Primary key: (ConversationID, UserID). Links are never removed.
type Participant struct {
	ConversationID string          `db:"conversation_id"`
	UserID         string          `db:"user_id"`
	Role           ParticipantRole `db:"role"`
	JoinedAt       time.Time       `db:"joined_at"`
}
