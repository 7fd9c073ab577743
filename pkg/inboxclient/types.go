package inboxclient

import "time"

// Session is the signed-in identity every call takes explicitly. The
// zero value is "signed out".
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
}

func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.AccessToken != "" && (s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt))
}

type Conversation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"chat_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Body           string    `json:"content"`
	Kind           string    `json:"message_type"`
	ClientID       string    `json:"client_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Attachment is the metadata of a picked file. Kind is one of image,
// video, audio or document.
type Attachment struct {
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
	Kind      string `json:"kind"`
}

// Progress reports a simulated upload; 100 means the message is stored.
type Progress struct {
	ConversationID string `json:"conversation_id"`
	ClientID       string `json:"client_id"`
	FileName       string `json:"file_name"`
	Progress       int    `json:"progress"`
}
