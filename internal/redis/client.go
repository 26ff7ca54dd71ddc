package redisx

import (
	redis "github.com/redis/go-redis/v9"
)

// NewClient returns a client for addr. Connections are established lazily.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
