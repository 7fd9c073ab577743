package chat

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

// MessageKind tags what a message carries. Attachment kinds mirror the
// file picker categories.
type MessageKind string

const (
	MessageKindText     MessageKind = "text"
	MessageKindImage    MessageKind = "image"
	MessageKindVideo    MessageKind = "video"
	MessageKindAudio    MessageKind = "audio"
	MessageKindDocument MessageKind = "document"
)

// MaxBodyLength bounds a message body in characters.
const MaxBodyLength = 4000

// MaxEncodedSize bounds the JSON encoding of a stored message in bytes.
// The change feed event wrapping it must fit in one Postgres NOTIFY
// payload (8000 bytes), and escaping can grow a character to 6 bytes.
const MaxEncodedSize = 7500

func (k MessageKind) Valid() bool {
	switch k {
	case MessageKindText, MessageKindImage, MessageKindVideo, MessageKindAudio, MessageKindDocument:
		return true
	}
	return false
}

// IsAttachment reports whether k tags a file placeholder.
func (k MessageKind) IsAttachment() bool {
	return k.Valid() && k != MessageKindText
}

// Message is an immutable entry in a conversation.
type Message struct {
	ID             string      `db:"id" json:"id"`
	ConversationID string      `db:"conversation_id" json:"chat_id"`
	SenderID       string      `db:"sender_id" json:"sender_id"`
	SenderName     string      `db:"sender_name" json:"sender_name"`
	Body           string      `db:"body" json:"content"`
	Kind           MessageKind `db:"kind" json:"message_type"`
	ClientID       *string     `db:"client_id" json:"client_id,omitempty"` // correlation id chosen by the sender
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// NewMessage validates m and fills defaults: the body is trimmed, the
// kind defaults to text, an empty client id becomes nil and a zero
// CreatedAt becomes now.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.SenderID == "" {
		return nil, ErrInvalidConversation
	}

	m.Body = strings.TrimSpace(m.Body)
	if m.Body == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(m.Body) > MaxBodyLength {
		return nil, ErrMessageTooLong
	}

	if m.Kind == "" {
		m.Kind = MessageKindText
	}
	if !m.Kind.Valid() {
		return nil, ErrInvalidAttachment
	}

	if m.ClientID != nil {
		id := strings.TrimSpace(*m.ClientID)
		if id == "" {
			m.ClientID = nil
		} else {
			m.ClientID = &id
		}
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.CreatedAt = m.CreatedAt.UTC()

	if encodedSize(m) > MaxEncodedSize {
		return nil, ErrMessageTooLong
	}
	return &m, nil
}

// encodedSize is the size m will have once stored, with a uuid as id.
func encodedSize(m Message) int {
	if m.ID == "" {
		m.ID = "00000000-0000-0000-0000-000000000000"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return 0
	}
	return len(b)
}
