package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelCacheLocalExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	c := NewChannelCache(nil, "v1.5", time.Hour)
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, []string{"all", "Agoda"}))
	names, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"all", "Agoda"}, names)

	now = now.Add(61 * time.Minute)
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)
}

func TestChannelCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewChannelCache(nil, "v1.5", time.Hour)
	require.NoError(t, c.Set(ctx, []string{"all"}))
	require.NoError(t, c.Invalidate(ctx))

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
