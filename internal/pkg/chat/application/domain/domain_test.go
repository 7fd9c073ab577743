package chat

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		in      Message
		wantErr error
		check   func(t *testing.T, m *Message)
	}{
		{
			name:    "missing ids",
			in:      Message{Body: "hi"},
			wantErr: ErrInvalidConversation,
		},
		{
			name:    "blank body",
			in:      Message{ConversationID: "c", SenderID: "u", Body: "   \n"},
			wantErr: ErrEmptyMessage,
		},
		{
			name:    "too long",
			in:      Message{ConversationID: "c", SenderID: "u", Body: strings.Repeat("é", MaxBodyLength+1)},
			wantErr: ErrMessageTooLong,
		},
		{
			name:    "escaped body exceeds encoded size",
			in:      Message{ConversationID: "c", SenderID: "u", Body: strings.Repeat("<", MaxBodyLength)},
			wantErr: ErrMessageTooLong,
		},
		{
			name:    "multibyte body exceeds encoded size",
			in:      Message{ConversationID: "c", SenderID: "u", Body: strings.Repeat("😀", MaxBodyLength)},
			wantErr: ErrMessageTooLong,
		},
		{
			name: "ascii body at max length",
			in:   Message{ConversationID: "c", SenderID: "u", Body: strings.Repeat("a", MaxBodyLength)},
			check: func(t *testing.T, m *Message) {
				if len(m.Body) != MaxBodyLength {
					t.Fatalf("body length = %d", len(m.Body))
				}
			},
		},
		{
			name:    "unknown kind",
			in:      Message{ConversationID: "c", SenderID: "u", Body: "x", Kind: "sticker"},
			wantErr: ErrInvalidAttachment,
		},
		{
			name: "defaults",
			in:   Message{ConversationID: "c", SenderID: "u", Body: "  hello  ", ClientID: strPtr("  ")},
			check: func(t *testing.T, m *Message) {
				if m.Body != "hello" || m.Kind != MessageKindText || m.ClientID != nil || m.CreatedAt.IsZero() {
					t.Fatalf("unexpected message %+v", m)
				}
			},
		},
		{
			name: "keeps client id",
			in:   Message{ConversationID: "c", SenderID: "u", Body: "x", ClientID: strPtr(" abc ")},
			check: func(t *testing.T, m *Message) {
				if m.ClientID == nil || *m.ClientID != "abc" {
					t.Fatalf("client id = %v", m.ClientID)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMessage(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMessage: %v", err)
			}
			tt.check(t, m)
		})
	}
}

func TestNewConversation(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	c, err := NewConversation(" Team ", "", now)
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	if c.Name != "Team" || c.Kind != ConversationIndividual || c.CreatedAt.Location() != time.UTC {
		t.Fatalf("unexpected conversation %+v", c)
	}
	if _, err := NewConversation("", ConversationGroup, now); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("err = %v, want ErrInvalidName", err)
	}
	if _, err := NewConversation("x", "channel", now); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("err = %v, want ErrInvalidKind", err)
	}
}

func TestAttachment(t *testing.T) {
	a := Attachment{FileName: "beach.png", SizeBytes: 1572864, Kind: MessageKindImage}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got, want := a.Describe(), "📎 🖼️ beach.png (1.50 MB)"; got != want {
		t.Fatalf("Describe = %q, want %q", got, want)
	}

	doc := Attachment{FileName: "notes.txt", SizeBytes: 0, Kind: MessageKindDocument}
	if got, want := doc.Describe(), "📎 📄 notes.txt (0.00 MB)"; got != want {
		t.Fatalf("Describe = %q, want %q", got, want)
	}

	big := Attachment{FileName: "movie.mp4", SizeBytes: MaxAttachmentSize + 1, Kind: MessageKindVideo}
	if err := big.Validate(); !errors.Is(err, ErrAttachmentTooBig) {
		t.Fatalf("err = %v, want ErrAttachmentTooBig", err)
	}
	if err := (Attachment{FileName: "x", Kind: MessageKindText}).Validate(); !errors.Is(err, ErrInvalidAttachment) {
		t.Fatalf("err = %v, want ErrInvalidAttachment", err)
	}
}
