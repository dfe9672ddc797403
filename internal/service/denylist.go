package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked session tokens until they would have expired.
type Denylist interface {
	Add(ctx context.Context, key string, ttl time.Duration) error
	Contains(ctx context.Context, key string) (bool, error)
}

// RedisDenylist stores revoked tokens as expiring Redis keys so every server
// instance sharing the Redis sees the same revocations.
type RedisDenylist struct {
	client *redis.Client
	prefix string
}

// NewRedisDenylist wraps an existing client.
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client, prefix: "jambearum:revoked:"}
}

// OpenRedisDenylist connects to the Redis at url (redis://...) and verifies
// the connection.
func OpenRedisDenylist(ctx context.Context, url string) (*RedisDenylist, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisDenylist(client), nil
}

func (d *RedisDenylist) Add(ctx context.Context, key string, ttl time.Duration) error {
	return d.client.Set(ctx, d.prefix+key, "1", ttl).Err()
}

func (d *RedisDenylist) Contains(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the Redis connection pool.
func (d *RedisDenylist) Close() error {
	return d.client.Close()
}
