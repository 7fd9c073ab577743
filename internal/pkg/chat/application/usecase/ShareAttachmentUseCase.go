package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	queueport "go-inbox/internal/infrastructure/queue/port"
	chat "go-inbox/internal/pkg/chat/application/domain"
	repository "go-inbox/internal/pkg/chat/persistence/repository/port"
)

// ShareAttachmentTaskType is the queue task name of the attachment
// placeholder worker.
const ShareAttachmentTaskType = "chat:share_attachment"

// ShareAttachmentPayload is the JSON payload transported via the queue.
type ShareAttachmentPayload struct {
	ConversationID string          `json:"conversationId"`
	SenderID       string          `json:"senderId"`
	SenderName     string          `json:"senderName"`
	Attachment     chat.Attachment `json:"attachment"`
	ClientID       *string         `json:"clientId"`
}

type ShareAttachmentInput struct {
	ConversationID string
	SenderID       string
	SenderName     string
	Attachment     chat.Attachment
	ClientID       *string
}

// ShareAttachmentResult identifies the queued upload. ClientID is the
// correlation id the final message will carry.
type ShareAttachmentResult struct {
	TaskID   string
	ClientID string
}

// ShareAttachmentUseCase validates a picked file and hands it to the
// background worker that simulates the upload.
type ShareAttachmentUseCase struct {
	Repo  repository.ChatRepository
	Queue queueport.Client
}

func NewShareAttachmentUseCase(repo repository.ChatRepository, q queueport.Client) *ShareAttachmentUseCase {
	return &ShareAttachmentUseCase{Repo: repo, Queue: q}
}

func (uc *ShareAttachmentUseCase) Execute(ctx context.Context, in ShareAttachmentInput) (*ShareAttachmentResult, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return nil, fmt.Errorf("conversationId and senderId are required")
	}
	if err := in.Attachment.Validate(); err != nil {
		return nil, err
	}

	ok, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return nil, chat.ErrNotParticipant
	}

	// the worker may retry; a fixed correlation id keeps the insert idempotent
	if in.ClientID == nil || *in.ClientID == "" {
		id := uuid.NewString()
		in.ClientID = &id
	}

	b, err := json.Marshal(ShareAttachmentPayload(in))
	if err != nil {
		return nil, fmt.Errorf("encode attachment task: %w", err)
	}
	id, err := uc.Queue.Enqueue(ctx, queueport.Task{Type: ShareAttachmentTaskType, Payload: b},
		queueport.EnqueueOption{Queue: "chat", MaxRetry: 3})
	if err != nil {
		return nil, fmt.Errorf("%w: enqueue: %v", ErrPersistence, err)
	}
	return &ShareAttachmentResult{TaskID: id, ClientID: *in.ClientID}, nil
}
