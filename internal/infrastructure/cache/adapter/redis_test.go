package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"go-inbox/internal/infrastructure/cache/port"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	c := NewRedisCache(client, "test:")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheSetGetDel(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, port.ErrMiss) {
		t.Fatalf("Get missing: err = %v, want ErrMiss", err)
	}
	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:k") {
		t.Fatal("expected prefixed key in redis")
	}
	got, err := c.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	n, err := c.Del(ctx, "k", "other")
	if err != nil || n != 1 {
		t.Fatalf("Del = %d, %v", n, err)
	}
	if n, err := c.Del(ctx); err != nil || n != 0 {
		t.Fatalf("Del no keys = %d, %v", n, err)
	}
}

func TestRedisCacheTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "session", "x", time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := c.Get(ctx, "session"); !errors.Is(err, port.ErrMiss) {
		t.Fatalf("expected expiry, err = %v", err)
	}
}

func TestNewRedisClientErrors(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewRedisClient(context.Background(), "://bad"); err == nil {
		t.Fatal("expected parse error")
	}
}
