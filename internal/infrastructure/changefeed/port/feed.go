package port

import (
	"context"
	"encoding/json"
)

// Event types carried on the feed.
const (
	EventMessageInserted = "message.inserted"
	EventUploadProgress  = "upload.progress"
)

// Event is one change notification. Message events are scoped to a
// conversation; progress events are scoped to the uploading user.
type Event struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber delivers events to handler in emission order until ctx is
// canceled. Subscribe blocks; it returns nil on cancellation.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(Event)) error
}

type Feed interface {
	Publisher
	Subscriber
	Close() error
}
