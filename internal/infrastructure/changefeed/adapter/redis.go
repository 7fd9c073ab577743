package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"go-inbox/internal/infrastructure/changefeed/port"
)

var errFeedClosed = errors.New("feed closed")

// RedisFeed carries events over a redis pub/sub channel.
type RedisFeed struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisFeed(client *redis.Client, channel string, logger *slog.Logger) *RedisFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisFeed{client: client, channel: channel, logger: logger}
}

var _ port.Feed = (*RedisFeed)(nil)

func (f *RedisFeed) Publish(ctx context.Context, e port.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redis feed: encode: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, b).Err(); err != nil {
		return fmt.Errorf("redis feed: publish: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, handler func(port.Event)) error {
	ps := f.client.Subscribe(ctx, f.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("redis feed: subscribe: %w", err)
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis feed: %w", errFeedClosed)
			}
			var e port.Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				f.logger.Warn("redis feed: dropping malformed payload", "err", err)
				continue
			}
			handler(e)
		}
	}
}

// Close is a no-op; the redis client is owned by the caller.
func (f *RedisFeed) Close() error { return nil }
