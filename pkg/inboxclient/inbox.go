package inboxclient

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyMessage is returned by Send for a blank body; nothing is sent.
var ErrEmptyMessage = errors.New("inboxclient: message is empty")

var ErrNoConversation = errors.New("inboxclient: no conversation selected")

// EntryState tracks an optimistic message through its round trip.
type EntryState int

const (
	Pending EntryState = iota
	Confirmed
	Failed
)

func (s EntryState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Entry is one line of the selected conversation's timeline.
type Entry struct {
	Message
	State EntryState
}

// Upload is the latest progress seen for an attachment, keyed by client id.
type Upload struct {
	FileName string
	Progress int
}

// Inbox is the client-side view of one signed-in user: their conversations,
// the selected conversation's timeline and in-flight uploads. It is safe for
// concurrent use; the feed goroutine and the caller may touch it together.
type Inbox struct {
	client  *Client
	session *Session

	mu            sync.Mutex
	conversations []Conversation
	selected      string
	entries       []Entry
	uploads       map[string]Upload

	now func() time.Time
}

func NewInbox(client *Client, session *Session) *Inbox {
	return &Inbox{
		client:  client,
		session: session,
		uploads: make(map[string]Upload),
		now:     time.Now,
	}
}

func (ib *Inbox) Session() *Session { return ib.session }

// Load refreshes the conversation list. The first conversation is selected
// when nothing is selected yet.
func (ib *Inbox) Load(ctx context.Context) error {
	convs, err := ib.client.ListConversations(ctx, ib.session)
	if err != nil {
		return err
	}
	ib.mu.Lock()
	ib.conversations = convs
	first := ib.selected == "" && len(convs) > 0
	ib.mu.Unlock()
	if first {
		return ib.Select(ctx, convs[0].ID)
	}
	return nil
}

// Select switches to conversationID and loads its full history.
func (ib *Inbox) Select(ctx context.Context, conversationID string) error {
	msgs, err := ib.client.ListMessages(ctx, ib.session, conversationID)
	if err != nil {
		return err
	}
	entries := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, Entry{Message: m, State: Confirmed})
	}
	ib.mu.Lock()
	ib.selected = conversationID
	ib.entries = entries
	ib.mu.Unlock()
	return nil
}

// Send appends the message locally before the server confirms it. On success
// the pending entry is replaced by the stored row; on failure it is kept and
// marked Failed, and the error is returned.
func (ib *Inbox) Send(ctx context.Context, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	ib.mu.Lock()
	convID := ib.selected
	if convID == "" {
		ib.mu.Unlock()
		return nil, ErrNoConversation
	}
	clientID := uuid.NewString()
	ib.entries = append(ib.entries, Entry{
		Message: Message{
			ConversationID: convID,
			SenderID:       ib.session.UserID,
			SenderName:     ib.session.FullName,
			Body:           body,
			Kind:           "text",
			ClientID:       clientID,
			CreatedAt:      ib.now(),
		},
		State: Pending,
	})
	ib.mu.Unlock()

	m, err := ib.client.SendMessage(ctx, ib.session, convID, body, clientID)
	ib.mu.Lock()
	defer ib.mu.Unlock()
	// the timeline may have been switched while the call was in flight
	current := ib.selected == convID
	if err != nil {
		if i := ib.indexLocked(clientID, ""); current && i >= 0 && ib.entries[i].State == Pending {
			ib.entries[i].State = Failed
		}
		return nil, err
	}
	if current {
		ib.mergeLocked(*m)
	}
	return m, nil
}

// Attach queues an attachment for the selected conversation and starts
// tracking its progress.
func (ib *Inbox) Attach(ctx context.Context, a Attachment) (string, error) {
	ib.mu.Lock()
	convID := ib.selected
	ib.mu.Unlock()
	if convID == "" {
		return "", ErrNoConversation
	}
	clientID := uuid.NewString()
	// tracked before the call: progress can arrive before the reply does
	ib.mu.Lock()
	ib.uploads[clientID] = Upload{FileName: a.FileName}
	ib.mu.Unlock()

	if _, err := ib.client.ShareAttachment(ctx, ib.session, convID, a, clientID); err != nil {
		ib.mu.Lock()
		delete(ib.uploads, clientID)
		ib.mu.Unlock()
		return "", err
	}
	return clientID, nil
}

// Apply folds a feed event into the state. Messages for other conversations
// are ignored and redelivered messages merge into the existing entry.
// It reports whether anything visible changed.
func (ib *Inbox) Apply(e Event) bool {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	switch e.Type {
	case EventMessageInserted, EventSent:
		if e.Message == nil {
			return false
		}
		return ib.mergeLocked(*e.Message)
	case EventUploadProgress:
		if e.Progress == nil {
			return false
		}
		p := *e.Progress
		if p.Progress >= 100 {
			delete(ib.uploads, p.ClientID)
			return true
		}
		ib.uploads[p.ClientID] = Upload{FileName: p.FileName, Progress: p.Progress}
		return true
	}
	return false
}

// Follow applies feed events until ctx ends or the feed closes, calling
// onChange after each visible change.
func (ib *Inbox) Follow(ctx context.Context, f *Feed, onChange func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-f.Events():
			if !ok {
				return f.Err()
			}
			if ib.Apply(e) && onChange != nil {
				onChange(e)
			}
		}
	}
}

func (ib *Inbox) mergeLocked(m Message) bool {
	if m.ConversationID != ib.selected {
		return false
	}
	if i := ib.indexLocked(m.ClientID, m.ID); i >= 0 {
		if ib.entries[i].State == Confirmed && ib.entries[i].ID == m.ID {
			return false
		}
		ib.entries[i] = Entry{Message: m, State: Confirmed}
		return true
	}
	// Confirmed rows go before any local entries still in flight.
	at := len(ib.entries)
	for i, e := range ib.entries {
		if e.State != Confirmed {
			at = i
			break
		}
	}
	ib.entries = slices.Insert(ib.entries, at, Entry{Message: m, State: Confirmed})
	return true
}

func (ib *Inbox) indexLocked(clientID, id string) int {
	for i, e := range ib.entries {
		if clientID != "" && e.ClientID == clientID {
			return i
		}
		if id != "" && e.ID == id {
			return i
		}
	}
	return -1
}

func (ib *Inbox) Selected() string {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	return ib.selected
}

func (ib *Inbox) Conversations() []Conversation {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	return append([]Conversation(nil), ib.conversations...)
}

// Filter returns conversations whose name contains query, ignoring case.
func (ib *Inbox) Filter(query string) []Conversation {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Conversation
	for _, c := range ib.Conversations() {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

func (ib *Inbox) Messages() []Entry {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	return append([]Entry(nil), ib.entries...)
}

func (ib *Inbox) Uploads() map[string]Upload {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	out := make(map[string]Upload, len(ib.uploads))
	for k, v := range ib.uploads {
		out[k] = v
	}
	return out
}
