package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the alternative persistent tier for installs that
// already run Redis (several gateway instances sharing one session,
// the browser-profile equivalent of shared local storage).
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "promptwizard:session:",
	}
}

func (r *RedisStore) Name() string { return "local" }

func (r *RedisStore) key(name string) string {
	return r.prefix + name
}

func (r *RedisStore) Set(ctx context.Context, name, value string, ttl time.Duration) error {
	if name == "" {
		return fmt.Errorf("session: missing entry name")
	}
	if err := r.client.Set(ctx, r.key(name), value, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set %s: %w", name, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, name string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(name)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: redis get %s: %w", name, err)
	}
	return val, true, nil
}

func (r *RedisStore) Remove(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, r.key(name)).Err(); err != nil {
		return fmt.Errorf("session: redis del %s: %w", name, err)
	}
	return nil
}
