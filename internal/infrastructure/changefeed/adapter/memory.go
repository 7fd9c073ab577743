package adapter

import (
	"context"
	"sync"

	"go-inbox/internal/infrastructure/changefeed/port"
)

// MemoryFeed delivers events synchronously to every attached handler of
// the same process.
type MemoryFeed struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]func(port.Event)
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{handlers: make(map[int]func(port.Event))}
}

var _ port.Feed = (*MemoryFeed)(nil)

func (f *MemoryFeed) Publish(_ context.Context, e port.Event) error {
	f.mu.RLock()
	hs := make([]func(port.Event), 0, len(f.handlers))
	for i := 0; i < f.next; i++ {
		if h, ok := f.handlers[i]; ok {
			hs = append(hs, h)
		}
	}
	f.mu.RUnlock()
	for _, h := range hs {
		h(e)
	}
	return nil
}

// Attach registers handler without blocking and returns its detach func.
func (f *MemoryFeed) Attach(handler func(port.Event)) (detach func()) {
	f.mu.Lock()
	id := f.next
	f.next++
	f.handlers[id] = handler
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.handlers, id)
		f.mu.Unlock()
	}
}

func (f *MemoryFeed) Subscribe(ctx context.Context, handler func(port.Event)) error {
	detach := f.Attach(handler)
	defer detach()
	<-ctx.Done()
	return nil
}

func (f *MemoryFeed) Close() error { return nil }
