package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ChannelCache holds the channel list for a bounded time. Entries expire after
// ttl; Invalidate drops them immediately. When Redis is unreachable an
// in-process copy with the same expiry is used.
type ChannelCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	mu        sync.Mutex
	local     []string
	expiresAt time.Time
	now       func() time.Time
}

func NewChannelCache(client *redis.Client, namespace string, ttl time.Duration) *ChannelCache {
	return &ChannelCache{client: client, key: "reports:channels:" + namespace, ttl: ttl, now: time.Now}
}

// Get reports a miss as ok=false with a nil error.
func (c *ChannelCache) Get(ctx context.Context) ([]string, bool, error) {
	if c.client != nil {
		b, err := c.client.Get(ctx, c.key).Bytes()
		switch {
		case err == nil:
			var names []string
			if err := json.Unmarshal(b, &names); err != nil {
				return nil, false, err
			}
			return names, true, nil
		case errors.Is(err, redis.Nil):
			return nil, false, nil
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.local == nil || c.now().After(c.expiresAt) {
		c.local = nil
		return nil, false, nil
	}
	return append([]string(nil), c.local...), true, nil
}

func (c *ChannelCache) Set(ctx context.Context, names []string) error {
	c.mu.Lock()
	c.local = append([]string(nil), names...)
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	b, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, c.ttl).Err()
}

func (c *ChannelCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.local = nil
	c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key).Err()
}
