package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps slots as plain string keys in Redis.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. Keys are stored as
// "tidemark:slot:<slot>".
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "tidemark:slot:"}
}

// DialRedis creates a client for addr and db and checks it answers.
func DialRedis(ctx context.Context, addr string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return NewRedisStore(rdb), nil
}

func (r *RedisStore) key(slot string) string {
	return r.prefix + slot
}

func (r *RedisStore) Get(ctx context.Context, slot string) (string, error) {
	content, err := r.rdb.Get(ctx, r.key(slot)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", slot, err)
	}
	return content, nil
}

func (r *RedisStore) Put(ctx context.Context, slot, content string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(slot), content, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", slot, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, slot string) error {
	n, err := r.rdb.Del(ctx, r.key(slot)).Result()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", slot, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}
	return nil
}

// Close releases the client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
