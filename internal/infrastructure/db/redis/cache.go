package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userListKey = "users:list"
	userListTTL = 30 * time.Second
)

// UserListCache keeps the rendered user listing in Redis for a short window.
// The listing triggers a collection scan plus a ticket join, so repeated reads
// within the TTL are served from the cached payload. Any write to the user
// collection invalidates it.
type UserListCache struct {
	client *redis.Client
}

// NewUserListCache wraps the given Redis client.
func NewUserListCache(client *redis.Client) *UserListCache {
	return &UserListCache{client: client}
}

// Get returns the cached payload and whether it was present.
func (c *UserListCache) Get(ctx context.Context) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, userListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("user list cache get: %w", err)
	}
	return payload, true, nil
}

// Set stores the payload with the cache TTL.
func (c *UserListCache) Set(ctx context.Context, payload []byte) error {
	return c.client.Set(ctx, userListKey, payload, userListTTL).Err()
}

// Invalidate drops the cached listing.
func (c *UserListCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, userListKey).Err()
}
