package flags

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Shown-once flags are day-scoped; keep them a bit longer than a day
// so a flag survives timezone drift but does not accumulate forever.
const redisFlagTTL = 48 * time.Hour

// Redis is a Store backed by a shared Redis instance, so the
// shown-once guarantee holds across server restarts and replicas.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a Redis-backed store. Keys are namespaced with
// the given prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "flags"
	}
	return &Redis{client: client, prefix: prefix}
}

// MarkShown sets the key if absent (SET NX) and reports whether this
// call won.
func (r *Redis) MarkShown(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+":"+key, "1", redisFlagTTL).Result()
}
