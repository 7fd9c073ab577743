package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	feedport "go-inbox/internal/infrastructure/changefeed/port"
	qport "go-inbox/internal/infrastructure/queue/port"
	"go-inbox/internal/pkg/chat/application/usecase"
)

// Progress is the payload of an upload.progress event. Progress runs 0
// to 100; 100 is sent only after the describing message is stored.
type Progress struct {
	ConversationID string `json:"conversation_id"`
	ClientID       string `json:"client_id,omitempty"`
	FileName       string `json:"file_name"`
	Progress       int    `json:"progress"`
}

// ShareAttachmentDeps wires the worker. Tick is the delay between 10%
// steps; Settle is the pause after reaching 90%.
type ShareAttachmentDeps struct {
	SendMessage *usecase.SendMessageUseCase
	Feed        feedport.Publisher
	Tick        time.Duration
	Settle      time.Duration
	Logger      *slog.Logger
}

// RegisterShareAttachmentTask binds the attachment placeholder worker to srv.
func RegisterShareAttachmentTask(srv qport.Server, deps ShareAttachmentDeps) {
	if deps.Tick <= 0 {
		deps.Tick = 100 * time.Millisecond
	}
	if deps.Settle <= 0 {
		deps.Settle = time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	srv.Register(usecase.ShareAttachmentTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.ShareAttachmentPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return fmt.Errorf("decode attachment task: %w", err)
		}
		return runShareAttachment(ctx, deps, p)
	})
}

func runShareAttachment(ctx context.Context, deps ShareAttachmentDeps, p usecase.ShareAttachmentPayload) error {
	if err := p.Attachment.Validate(); err != nil {
		return err
	}
	clientID := ""
	if p.ClientID != nil {
		clientID = *p.ClientID
	}
	progress := func(n int) {
		data, _ := json.Marshal(Progress{
			ConversationID: p.ConversationID,
			ClientID:       clientID,
			FileName:       p.Attachment.FileName,
			Progress:       n,
		})
		err := deps.Feed.Publish(ctx, feedport.Event{
			Type:           feedport.EventUploadProgress,
			ConversationID: p.ConversationID,
			UserID:         p.SenderID,
			Data:           data,
		})
		if err != nil {
			deps.Logger.WarnContext(ctx, "attachment: publish progress", "progress", n, "err", err)
		}
	}

	for n := 0; n < 90; n += 10 {
		progress(n)
		if err := sleep(ctx, deps.Tick); err != nil {
			return err
		}
	}
	progress(90)
	if err := sleep(ctx, deps.Settle); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg, err := deps.SendMessage.Execute(ctx, usecase.SendMessageInput{
		ConversationID: p.ConversationID,
		SenderID:       p.SenderID,
		SenderName:     p.SenderName,
		Body:           p.Attachment.Describe(),
		Kind:           p.Attachment.Kind,
		ClientID:       p.ClientID,
	})
	if err != nil {
		// the retry/backoff policy is controlled by the queue adapter
		return err
	}
	progress(100)
	deps.Logger.InfoContext(ctx, "attachment shared", "conversation_id", p.ConversationID, "message_id", msg.ID, "file", p.Attachment.FileName)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
