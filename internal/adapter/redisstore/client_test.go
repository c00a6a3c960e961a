package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painradar/painradar-backend/internal/config"
)

func TestNew_UnconfiguredURL(t *testing.T) {
	t.Parallel()

	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.False(t, c.Configured())
}

func TestNew_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.RedisConfig{
		URL:         "not-a-redis-url",
		DialTimeout: time.Second,
	})
	require.Error(t, err)
}

func TestUnconfigured_EveryOperationFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := &Client{}

	_, _, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, c.Set(ctx, "k", "v", time.Minute), ErrNotConfigured)

	_, err = c.SetNX(ctx, "k", "v", time.Minute)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, c.Del(ctx, "k"), ErrNotConfigured)

	_, err = c.Incr(ctx, "k")
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, c.Expire(ctx, "k", time.Minute), ErrNotConfigured)

	_, _, err = c.TTL(ctx, "k")
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, c.Ping(ctx), ErrNotConfigured)

	assert.NoError(t, c.Close())
}
