package payment

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers provider event ids whose processing finished.
// An id is recorded only after the reservation change committed, so an attempt
// that died half way is processed again on redelivery.
type Deduper interface {
	// Processed reports whether id already went through the reconciler.
	Processed(ctx context.Context, id string) (bool, error)
	// MarkProcessed records id after a successful reconcile.
	MarkProcessed(ctx context.Context, id string) error
}

// NopDeduper treats every delivery as new.
type NopDeduper struct{}

func (NopDeduper) Processed(context.Context, string) (bool, error) { return false, nil }
func (NopDeduper) MarkProcessed(context.Context, string) error      { return nil }

const dedupKeyPrefix = "payment:event:"

type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) Processed(ctx context.Context, id string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKeyPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *RedisDeduper) MarkProcessed(ctx context.Context, id string) error {
	return d.client.Set(ctx, dedupKeyPrefix+id, time.Now().UTC().Format(time.RFC3339), d.ttl).Err()
}
