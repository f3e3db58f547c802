package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// MessageDeduper remembers inbound webhook message IDs for a short window so
// that provider retries do not produce a second reply. It holds no domain
// state; losing it only means a retried message may be answered twice.
type MessageDeduper struct {
	client *redis.Client
	window time.Duration
}

// NewMessageDeduper accepts either a redis:// URL or a bare host:port.
func NewMessageDeduper(redisURL string, window time.Duration) *MessageDeduper {
	var opts *redis.Options
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("invalid REDIS_URL, falling back to address", "error", err)
			opts = &redis.Options{Addr: redisURL}
		} else {
			opts = parsed
		}
	} else {
		opts = &redis.Options{Addr: redisURL}
	}

	slog.Info("redis initialized", "addr", opts.Addr)
	return &MessageDeduper{client: redis.NewClient(opts), window: window}
}

// Seen records id and reports whether it had already been recorded inside
// the window. A nil deduper never reports duplicates.
func (d *MessageDeduper) Seen(ctx context.Context, id string) (bool, error) {
	if d == nil || id == "" {
		return false, nil
	}
	fresh, err := d.client.SetNX(ctx, "bot:msg:"+id, 1, d.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return !fresh, nil
}

func (d *MessageDeduper) Ping(ctx context.Context) error {
	if d == nil {
		return nil
	}
	return d.client.Ping(ctx).Err()
}

func (d *MessageDeduper) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}
