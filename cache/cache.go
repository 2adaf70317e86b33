// Package cache provides the optional redis cache for post listings.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"retroboard/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	postListTTL    = 60 * time.Second
	postListPrefix = "posts:"
)

// Cache degrades to a no-op when redis is not configured or unreachable;
// the board works without it, just slower.
type Cache struct {
	client *redis.Client
	log    *zap.SugaredLogger
}

func New(addr string, log *zap.SugaredLogger) *Cache {
	c := &Cache{log: log}
	if addr == "" {
		return c
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Warnw("invalid REDIS_ADDR, continuing without cache", "error", err)
			return c
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable, continuing without cache", "error", err)
		return c
	}

	c.client = client
	log.Info("redis cache connected")
	return c
}

func (c *Cache) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}

// PostListKey builds the cache key for a filtered post listing.
func PostListKey(category, tag string) string {
	switch {
	case category != "":
		return postListPrefix + "cat:" + category
	case tag != "":
		return postListPrefix + "tag:" + tag
	default:
		return postListPrefix + "all"
	}
}

func (c *Cache) GetPostList(ctx context.Context, key string) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnw("cache read failed", "key", key, "error", err)
		}
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return payload, true
}

func (c *Cache) SetPostList(ctx context.Context, key string, payload []byte) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, postListTTL).Err(); err != nil {
		c.log.Warnw("cache write failed", "key", key, "error", err)
	}
}

// InvalidatePosts drops every cached post listing. Called after any post
// mutation; cheap because the key space is tiny.
func (c *Cache) InvalidatePosts(ctx context.Context) {
	if c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, postListPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warnw("cache scan failed", "error", err)
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.log.Warnw("cache invalidation failed", "error", err)
		}
	}
}
