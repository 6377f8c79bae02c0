// Package cooldown gates extraction requests while a provider rate limit
// window is open. The gate is backed by a single Redis key with a TTL; a
// nil gate is valid and never blocks, so Redis stays optional.
package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cooldownKey = "jobtracker:extract:cooldown"

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

type Gate struct {
	rdb *redis.Client
}

// NewGate wraps rdb, which may be nil.
func NewGate(rdb *redis.Client) *Gate {
	return &Gate{rdb: rdb}
}

// Active reports whether a cooldown window is open and, if so, how many
// seconds remain. Redis errors are treated as no cooldown so a Redis
// outage never blocks extractions.
func (g *Gate) Active(ctx context.Context) (int, bool) {
	if g == nil || g.rdb == nil {
		return 0, false
	}

	ttl, err := g.rdb.TTL(ctx, cooldownKey).Result()
	if err != nil || ttl <= 0 {
		return 0, false
	}

	secs := int(ttl.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs, true
}

// Arm opens a cooldown window for the given number of seconds.
func (g *Gate) Arm(ctx context.Context, seconds int) error {
	if g == nil || g.rdb == nil {
		return nil
	}
	if seconds < 1 {
		seconds = 1
	}

	if err := g.rdb.Set(ctx, cooldownKey, "1", time.Duration(seconds)*time.Second).Err(); err != nil {
		return fmt.Errorf("arm cooldown: %w", err)
	}
	return nil
}
