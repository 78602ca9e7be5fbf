// Package cache provides an optional Redis read cache for rendered post
// responses. A nil *PostCache is valid and disables caching.
package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scribehq/scribe/internal/metrics"
)

const keyPrefix = "scribe:post:"

// PostCache caches marshaled post detail responses by slug.
type PostCache struct {
	cli *redis.Client
	ttl time.Duration
}

// New connects a PostCache to the Redis instance at addr.
func New(addr string, db int, ttl time.Duration) *PostCache {
	return &PostCache{
		cli: redis.NewClient(&redis.Options{Addr: addr, DB: db}),
		ttl: ttl,
	}
}

// Get returns the cached payload for slug, or ok=false on a miss. Cache
// errors degrade to misses; the store remains the source of truth.
func (c *PostCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.cli.Get(ctx, keyPrefix+slug).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get %s: %v", slug, err)
		}
		metrics.PostCacheHitsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.PostCacheHitsTotal.WithLabelValues("hit").Inc()
	return payload, true
}

// Set stores the payload for slug with the configured TTL.
func (c *PostCache) Set(ctx context.Context, slug string, payload []byte) {
	if c == nil {
		return
	}
	if err := c.cli.Set(ctx, keyPrefix+slug, payload, c.ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", slug, err)
	}
}

// Invalidate drops the cached payload for the given slugs. Called on post
// update (old and new slug) and delete.
func (c *PostCache) Invalidate(ctx context.Context, slugs ...string) {
	if c == nil || len(slugs) == 0 {
		return
	}
	keys := make([]string, len(slugs))
	for i, s := range slugs {
		keys[i] = keyPrefix + s
	}
	if err := c.cli.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: invalidate %v: %v", slugs, err)
	}
}
