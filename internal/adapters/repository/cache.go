package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/dormscore/internal/domain/model"
	"github.com/okian/dormscore/pkg/logger"
	"github.com/okian/dormscore/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a pooled go-redis client.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}

// CachedProvider is a cache-aside layer over another Provider. Redis failures
// are logged and bypassed; they never fail a read.
type CachedProvider struct {
	next   Provider
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	log    logger.Logger
}

// NewCachedProvider wraps next with a Redis cache.
func NewCachedProvider(next Provider, client redis.Cmdable, opts ...CacheOption) *CachedProvider {
	c := &CachedProvider{
		next:   next,
		client: client,
		ttl:    defaultCacheTTL,
		prefix: defaultKeyPrefix,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dormitories serves the catalog from cache when present.
func (c *CachedProvider) Dormitories(ctx context.Context) ([]model.Dormitory, error) {
	key := c.key(ResourceDormitories)

	var cached []model.Dormitory
	if c.load(ctx, ResourceDormitories, key, &cached) {
		return cached, nil
	}

	out, err := c.next.Dormitories(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, ResourceDormitories, key, out)
	return out, nil
}

// Notices serves a notice page from cache when present.
func (c *CachedProvider) Notices(ctx context.Context, limit int, category model.NoticeCategory) ([]model.Notice, error) {
	key := c.key(ResourceNotices, fmt.Sprintf("%s:%d", category, limit))

	var cached []model.Notice
	if c.load(ctx, ResourceNotices, key, &cached) {
		return cached, nil
	}

	out, err := c.next.Notices(ctx, limit, category)
	if err != nil {
		return nil, err
	}
	c.store(ctx, ResourceNotices, key, out)
	return out, nil
}

// Invalidate deletes every key stored under the given tags.
func (c *CachedProvider) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		if tag != ResourceDormitories && tag != ResourceNotices {
			return fmt.Errorf("%w: %s", ErrUnknownTag, tag)
		}
		tagKey := c.tagKey(tag)
		keys, err := c.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			return fmt.Errorf("list %s cache keys: %w", tag, err)
		}
		keys = append(keys, tagKey)
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete %s cache keys: %w", tag, err)
		}
	}
	return nil
}

func (c *CachedProvider) load(ctx context.Context, resource, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheResult(resource, "miss")
		return false
	case err != nil:
		metrics.RecordCacheResult(resource, "error")
		c.log.Warn(ctx, "cache read failed", logger.String("key", key), logger.Error(err))
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		metrics.RecordCacheResult(resource, "error")
		c.log.Warn(ctx, "cache payload corrupt", logger.String("key", key), logger.Error(err))
		return false
	}
	metrics.RecordCacheResult(resource, "hit")
	metrics.RecordCatalogRead(resource, "cache")
	return true
}

func (c *CachedProvider) store(ctx context.Context, resource, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn(ctx, "cache encode failed", logger.String("key", key), logger.Error(err))
		return
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		pipe.SAdd(ctx, c.tagKey(resource), key)
		return nil
	})
	if err != nil {
		c.log.Warn(ctx, "cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func (c *CachedProvider) key(parts ...string) string {
	k := c.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (c *CachedProvider) tagKey(tag string) string {
	return c.prefix + ":tag:" + tag
}
