// Package cache keeps the distinct message categories in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const categoriesKey = "board:categories"

// Redis implements common.CategoryCache.
type Redis struct {
	cli *redis.Client
	ttl time.Duration
}

// Connect connects to the Redis server and pings it to make sure the
// connection works.
func Connect(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{cli: cli, ttl: ttl}, nil
}

// Categories reports false on a cache miss.
func (r *Redis) Categories(ctx context.Context) ([]string, bool, error) {
	val, err := r.cli.Get(ctx, categoriesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get categories: %w", err)
	}

	var categories []string
	if err := json.Unmarshal(val, &categories); err != nil {
		return nil, false, fmt.Errorf("decode categories: %w", err)
	}
	return categories, true, nil
}

func (r *Redis) SetCategories(ctx context.Context, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	val, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if err := r.cli.Set(ctx, categoriesKey, val, r.ttl).Err(); err != nil {
		return fmt.Errorf("set categories: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.cli.Del(ctx, categoriesKey).Err(); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.cli.Close()
}
