package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/okian/dormscore/internal/domain/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider wraps the static catalog and counts calls.
type countingProvider struct {
	dormCalls   atomic.Int32
	noticeCalls atomic.Int32
	err         error
	notices     []model.Notice
}

func (c *countingProvider) Dormitories(ctx context.Context) ([]model.Dormitory, error) {
	c.dormCalls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return NewStaticProvider().Dormitories(ctx)
}

func (c *countingProvider) Notices(_ context.Context, limit int, _ model.NoticeCategory) ([]model.Notice, error) {
	c.noticeCalls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	if limit < len(c.notices) {
		return c.notices[:limit], nil
	}
	return c.notices, nil
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCachedProvider_Dormitories(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from redis", func(t *testing.T) {
		mr, client := setupRedis(t)
		next := &countingProvider{}
		c := NewCachedProvider(next, client, WithTTL(time.Minute))

		first, err := c.Dormitories(ctx)
		require.NoError(t, err)
		second, err := c.Dormitories(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), next.dormCalls.Load())
		assert.True(t, mr.Exists("dormscore:dormitories"))
		assert.Equal(t, time.Minute, mr.TTL("dormscore:dormitories"))
	})

	t.Run("expired entries are refreshed", func(t *testing.T) {
		mr, client := setupRedis(t)
		next := &countingProvider{}
		c := NewCachedProvider(next, client, WithTTL(time.Second))

		_, _ = c.Dormitories(ctx)
		mr.FastForward(2 * time.Second)
		_, _ = c.Dormitories(ctx)

		assert.Equal(t, int32(2), next.dormCalls.Load())
	})

	t.Run("errors from the next provider are not cached", func(t *testing.T) {
		mr, client := setupRedis(t)
		boom := errors.New("db down")
		c := NewCachedProvider(&countingProvider{err: boom}, client)

		_, err := c.Dormitories(ctx)
		assert.ErrorIs(t, err, boom)
		assert.False(t, mr.Exists("dormscore:dormitories"))
	})

	t.Run("a broken redis never fails the read", func(t *testing.T) {
		mr, client := setupRedis(t)
		mr.Close()
		next := &countingProvider{}
		c := NewCachedProvider(next, client)

		dorms, err := c.Dormitories(ctx)
		require.NoError(t, err)
		assert.Len(t, dorms, 6)
	})

	t.Run("corrupt payloads are ignored", func(t *testing.T) {
		mr, client := setupRedis(t)
		require.NoError(t, mr.Set("dormscore:dormitories", "{not json"))
		next := &countingProvider{}
		c := NewCachedProvider(next, client)

		dorms, err := c.Dormitories(ctx)
		require.NoError(t, err)
		assert.Len(t, dorms, 6)
		assert.Equal(t, int32(1), next.dormCalls.Load())
	})
}

func TestCachedProvider_NoticesAndInvalidate(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	next := &countingProvider{notices: []model.Notice{
		{ID: 1, Title: "a", Category: model.CategoryGeneral},
		{ID: 2, Title: "b", Category: model.CategoryResult, Pinned: true},
	}}
	c := NewCachedProvider(next, client, WithKeyPrefix("test"))

	_, err := c.Notices(ctx, 1, "")
	require.NoError(t, err)
	_, err = c.Notices(ctx, 2, model.CategoryResult)
	require.NoError(t, err)
	got, err := c.Notices(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, int32(2), next.noticeCalls.Load())

	_, err = c.Dormitories(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, ResourceNotices))
	assert.False(t, mr.Exists("test:notices::1"))
	assert.False(t, mr.Exists("test:notices:result:2"))
	assert.False(t, mr.Exists("test:tag:notices"))
	assert.True(t, mr.Exists("test:dormitories"))

	_, _ = c.Notices(ctx, 1, "")
	assert.Equal(t, int32(3), next.noticeCalls.Load())

	require.NoError(t, c.Invalidate(ctx, ResourceDormitories, ResourceNotices))
	assert.False(t, mr.Exists("test:dormitories"))

	assert.ErrorIs(t, c.Invalidate(ctx, "pages"), ErrUnknownTag)
}
