package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"go-inbox/internal/infrastructure/queue/port"
)

// InlineQueue is an in-process Client and Server: Enqueue hands the task
// to the registered handler on a new goroutine. It has no persistence
// and no retries, which makes it suitable for tests and single-node
// development without a broker.
type InlineQueue struct {
	mu       sync.RWMutex
	handlers map[string]port.Handler
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	errs     chan error
}

func NewInlineQueue() *InlineQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &InlineQueue{
		handlers: make(map[string]port.Handler),
		ctx:      ctx,
		cancel:   cancel,
		errs:     make(chan error, 64),
	}
}

var (
	_ port.Client = (*InlineQueue)(nil)
	_ port.Server = (*InlineQueue)(nil)
)

func (q *InlineQueue) Register(taskType string, h port.Handler) {
	q.mu.Lock()
	q.handlers[taskType] = h
	q.mu.Unlock()
}

func (q *InlineQueue) Enqueue(_ context.Context, t port.Task, _ ...port.EnqueueOption) (string, error) {
	if t.Type == "" {
		return "", errors.New("inline queue: task type is required")
	}
	q.mu.RLock()
	h, ok := q.handlers[t.Type]
	q.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("inline queue: no handler for %q", t.Type)
	}
	if q.ctx.Err() != nil {
		return "", errors.New("inline queue: stopped")
	}

	id := uuid.NewString()
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := h(q.ctx, t); err != nil {
			select {
			case q.errs <- fmt.Errorf("%s %s: %w", t.Type, id, err):
			default:
			}
		}
	}()
	return id, nil
}

// Errors exposes handler failures; it is buffered and drops on overflow.
func (q *InlineQueue) Errors() <-chan error { return q.errs }

// Wait blocks until every enqueued task has returned.
func (q *InlineQueue) Wait() { q.wg.Wait() }

func (q *InlineQueue) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-q.ctx.Done():
	}
	return q.Stop(context.Background())
}

func (q *InlineQueue) Stop(context.Context) error {
	q.cancel()
	q.wg.Wait()
	return nil
}

func (q *InlineQueue) Close() error { return nil }
