package task

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	feedAdapter "go-inbox/internal/infrastructure/changefeed/adapter"
	feedport "go-inbox/internal/infrastructure/changefeed/port"
	queueAdapter "go-inbox/internal/infrastructure/queue/adapter"
	qport "go-inbox/internal/infrastructure/queue/port"
	chat "go-inbox/internal/pkg/chat/application/domain"
	"go-inbox/internal/pkg/chat/application/usecase"
	repoAdapter "go-inbox/internal/pkg/chat/persistence/repository/adapter"
)

func TestShareAttachmentTaskEmitsProgressThenMessage(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repoAdapter.NewMemoryChatRepository()
	feed := feedAdapter.NewMemoryFeed()
	q := queueAdapter.NewInlineQueue()
	defer q.Close()

	conv, err := usecase.NewCreateChatUseCase(repo).Execute(ctx, usecase.CreateChatInput{Name: "trip", CreatorID: "alice"})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	var (
		mu     sync.Mutex
		events []feedport.Event
	)
	detach := feed.Attach(func(e feedport.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	defer detach()

	RegisterShareAttachmentTask(q, ShareAttachmentDeps{
		SendMessage: usecase.NewSendMessageUseCase(repo, feed, logger),
		Feed:        feed,
		Tick:        time.Millisecond,
		Settle:      time.Millisecond,
		Logger:      logger,
	})

	_, err = usecase.NewShareAttachmentUseCase(repo, q).Execute(ctx, usecase.ShareAttachmentInput{
		ConversationID: conv.ID,
		SenderID:       "alice",
		SenderName:     "Alice",
		Attachment:     chat.Attachment{FileName: "beach.png", SizeBytes: 1572864, Kind: chat.MessageKindImage},
	})
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	q.Wait()

	select {
	case err := <-q.Errors():
		t.Fatalf("task failed: %v", err)
	default:
	}

	mu.Lock()
	defer mu.Unlock()

	var steps []int
	insertedAt := -1
	for i, e := range events {
		switch e.Type {
		case feedport.EventUploadProgress:
			if e.UserID != "alice" {
				t.Fatalf("progress addressed to %q", e.UserID)
			}
			var p Progress
			if err := json.Unmarshal(e.Data, &p); err != nil {
				t.Fatalf("decode progress: %v", err)
			}
			steps = append(steps, p.Progress)
		case feedport.EventMessageInserted:
			insertedAt = i
		}
	}
	want := []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if len(steps) != len(want) {
		t.Fatalf("progress steps = %v", steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("progress steps = %v", steps)
		}
	}
	if insertedAt != len(events)-2 {
		t.Fatalf("message should be inserted right before progress 100, events=%d at=%d", len(events), insertedAt)
	}

	msgs, _ := repo.GetMessagesByConversation(ctx, conv.ID)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	if got, want := msgs[0].Body, "📎 🖼️ beach.png (1.50 MB)"; got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
	if msgs[0].Kind != chat.MessageKindImage {
		t.Fatalf("kind = %q", msgs[0].Kind)
	}
}

func TestShareAttachmentTaskRejectsBadPayload(t *testing.T) {
	q := queueAdapter.NewInlineQueue()
	defer q.Close()
	RegisterShareAttachmentTask(q, ShareAttachmentDeps{Feed: feedAdapter.NewMemoryFeed()})

	if _, err := q.Enqueue(context.Background(), qport.Task{Type: usecase.ShareAttachmentTaskType, Payload: []byte("{not json")}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	q.Wait()
	select {
	case err := <-q.Errors():
		if err == nil {
			t.Fatal("expected decode error")
		}
	default:
		t.Fatal("malformed payload should fail the task")
	}
}
