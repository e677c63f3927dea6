package server

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Blacklist reports revoked users.
type Blacklist interface {
	IsBlacklisted(ctx context.Context, userID string) (bool, error)
}

// RedisBlacklist looks up revoked users as keys under a common prefix.
type RedisBlacklist struct {
	client *redis.Client
	prefix string
}

// NewRedisBlacklist wraps an existing client.
func NewRedisBlacklist(client *redis.Client, prefix string) *RedisBlacklist {
	return &RedisBlacklist{client: client, prefix: prefix}
}

// IsBlacklisted checks whether prefix+userID exists.
func (b *RedisBlacklist) IsBlacklisted(ctx context.Context, userID string) (bool, error) {
	n, err := b.client.Exists(ctx, b.prefix+userID).Result()
	if err != nil {
		return false, fmt.Errorf("blacklist lookup: %w", err)
	}
	return n > 0, nil
}
