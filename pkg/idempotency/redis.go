package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

// Redis is a Store shared by backend replicas.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to addr and checks the connection with PING.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Redis{client: client, prefix: "aquafarm:idempotency", ttl: ttl}, nil
}

func (r *Redis) key(ctx context.Context, key string) (string, error) {
	t, err := tenant.From(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:%s", r.prefix, t, key), nil
}

func (r *Redis) Lookup(ctx context.Context, key string) (string, bool, error) {
	k, err := r.key(ctx, key)
	if err != nil {
		return "", false, err
	}
	v, err := r.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Remember(ctx context.Context, key string, readingId string) error {
	k, err := r.key(ctx, key)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, k, readingId, r.ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
