package inboxclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types delivered by Feed.
const (
	EventMessageInserted = "message.inserted"
	EventUploadProgress  = "upload.progress"
	EventConnected       = "connected"
	EventJoined          = "joined"
	EventLeft            = "left"
	EventSent            = "sent"
	EventError           = "error"
)

// Event is one decoded server frame. Message is set for message.inserted
// and sent; Progress for upload.progress; Code and Error for error.
type Event struct {
	Type           string
	ConversationID string
	UserID         string
	Message        *Message
	Progress       *Progress
	Code           string
	Error          string
	ClientID       string
}

type frame struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id"`
	UserID         string          `json:"user_id"`
	Data           json.RawMessage `json:"data"`
	Message        *Message        `json:"message"`
	Code           string          `json:"code"`
	Error          string          `json:"error"`
	ClientID       string          `json:"client_id"`
}

// Feed is a live websocket subscription. Events arrive in server order on
// Events(), which is closed when the connection ends.
type Feed struct {
	ws      *websocket.Conn
	events  chan Event
	closing chan struct{}
	stopped chan struct{}
	wmu     sync.Mutex
	once    sync.Once
	err     error
}

// Subscribe opens the realtime feed for s. Nothing is delivered until
// Join is called for a conversation.
func (c *Client) Subscribe(ctx context.Context, s *Session) (*Feed, error) {
	if s == nil || s.AccessToken == "" {
		return nil, ErrNoSession
	}
	u := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/v1/realtime/ws"
	h := http.Header{}
	h.Set("Authorization", "Bearer "+s.AccessToken)

	ws, resp, err := c.dialer.DialContext(ctx, u, h)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrNoSession
		}
		return nil, err
	}
	f := &Feed{
		ws:      ws,
		events:  make(chan Event, 64),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go f.readLoop()
	return f, nil
}

func (f *Feed) Events() <-chan Event { return f.events }

func (f *Feed) Join(conversationID string) error {
	return f.write(map[string]string{"type": "join", "conversation_id": conversationID})
}

func (f *Feed) Leave(conversationID string) error {
	return f.write(map[string]string{"type": "leave", "conversation_id": conversationID})
}

// Send posts a message over the socket; the server answers with a sent
// event carrying the stored row.
func (f *Feed) Send(conversationID, body, clientID string) error {
	return f.write(map[string]string{"type": "message", "conversation_id": conversationID, "body": body, "client_id": clientID})
}

// Err reports why the read loop stopped, once Events() is closed.
func (f *Feed) Err() error { return f.err }

// Done is closed once the feed has stopped reading from the server.
func (f *Feed) Done() <-chan struct{} { return f.stopped }

// Close ends the subscription. Events not yet received are dropped.
func (f *Feed) Close() error {
	var err error
	f.once.Do(func() {
		close(f.closing)
		f.wmu.Lock()
		_ = f.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.wmu.Unlock()
		err = f.ws.Close()
	})
	return err
}

func (f *Feed) write(v any) error {
	f.wmu.Lock()
	defer f.wmu.Unlock()
	return f.ws.WriteJSON(v)
}

func (f *Feed) readLoop() {
	defer close(f.stopped)
	defer close(f.events)
	for {
		var fr frame
		if err := f.ws.ReadJSON(&fr); err != nil {
			select {
			case <-f.closing:
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					f.err = err
				}
			}
			return
		}
		select {
		case f.events <- decodeFrame(fr):
		case <-f.closing:
			return
		}
	}
}

func decodeFrame(fr frame) Event {
	e := Event{
		Type:           fr.Type,
		ConversationID: fr.ConversationID,
		UserID:         fr.UserID,
		Message:        fr.Message,
		Code:           fr.Code,
		Error:          fr.Error,
		ClientID:       fr.ClientID,
	}
	switch fr.Type {
	case EventMessageInserted:
		var m Message
		if json.Unmarshal(fr.Data, &m) == nil {
			e.Message = &m
		}
	case EventUploadProgress:
		var p Progress
		if json.Unmarshal(fr.Data, &p) == nil {
			e.Progress = &p
			if e.ConversationID == "" {
				e.ConversationID = p.ConversationID
			}
		}
	}
	return e
}
