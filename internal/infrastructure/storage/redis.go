package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nappylocks/client-sdk/internal/core/domain"
)

const connectTimeout = 5 * time.Second

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// ConnectRedis initialises a Redis client and validates connectivity with a
// ping. A default timeout is applied when none is provided.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = connectTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// Redis stores slots in Redis. Used by kiosk and shared-terminal deployments
// where local disk is not the right home for session state.
// Key format: state:<slot>
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-connected client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Save(ctx context.Context, slot string, data []byte) error {
	if err := r.client.Set(ctx, r.key(slot), data, 0).Err(); err != nil {
		return fmt.Errorf("redis save %s: %w", slot, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, slot string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, fmt.Errorf("redis load %s: %w", slot, err)
	}
	if len(data) == 0 {
		return nil, domain.ErrSlotEmpty
	}
	return data, nil
}

func (r *Redis) Delete(ctx context.Context, slot string) error {
	if err := r.client.Del(ctx, r.key(slot)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", slot, err)
	}
	return nil
}

func (r *Redis) key(slot string) string {
	return "state:" + slot
}
