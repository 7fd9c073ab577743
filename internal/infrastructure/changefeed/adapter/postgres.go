package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-inbox/internal/infrastructure/changefeed/port"
)

// maxNotifyPayload is Postgres' NOTIFY payload limit minus some slack.
const maxNotifyPayload = 7900

// ErrPayloadTooLarge is returned by Publish for events NOTIFY cannot carry.
var ErrPayloadTooLarge = errors.New("pg feed: payload exceeds notify limit")

// PgNotifyFeed carries events over LISTEN/NOTIFY on the primary database,
// so every api replica connected to it sees every insert.
type PgNotifyFeed struct {
	pool    *pgxpool.Pool
	channel string
	logger  *slog.Logger
	backoff time.Duration
}

func NewPgNotifyFeed(pool *pgxpool.Pool, channel string, logger *slog.Logger) *PgNotifyFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgNotifyFeed{pool: pool, channel: channel, logger: logger, backoff: time.Second}
}

var _ port.Feed = (*PgNotifyFeed)(nil)

func (f *PgNotifyFeed) Publish(ctx context.Context, e port.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("pg feed: encode: %w", err)
	}
	if len(b) > maxNotifyPayload {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(b))
	}
	if _, err := f.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, f.channel, string(b)); err != nil {
		return fmt.Errorf("pg feed: notify: %w", err)
	}
	return nil
}

// Subscribe holds one pooled connection in LISTEN mode and reconnects
// after connection failures.
func (f *PgNotifyFeed) Subscribe(ctx context.Context, handler func(port.Event)) error {
	for {
		err := f.listen(ctx, handler)
		if ctx.Err() != nil {
			return nil
		}
		f.logger.Warn("pg feed: listener stopped, reconnecting", "channel", f.channel, "err", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(f.backoff):
		}
	}
}

func (f *PgNotifyFeed) listen(ctx context.Context, handler func(port.Event)) error {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	ident := pgx.Identifier{f.channel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+ident); err != nil {
		return err
	}
	defer func() {
		_, _ = conn.Exec(context.WithoutCancel(ctx), "UNLISTEN "+ident)
	}()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var e port.Event
		if err := json.Unmarshal([]byte(n.Payload), &e); err != nil {
			f.logger.Warn("pg feed: dropping malformed payload", "err", err)
			continue
		}
		handler(e)
	}
}

func (f *PgNotifyFeed) Close() error { return nil }
