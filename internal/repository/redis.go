package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"indigo/internal/config"
	"indigo/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotCache stores the last catalog snapshot under a single key.
type RedisSnapshotCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		client: client,
		key:    models.MenuCollection + ":snapshot",
		ttl:    ttl,
	}
}

func (r *RedisSnapshotCache) LoadSnapshot(ctx context.Context) ([]models.MenuItem, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get snapshot from redis: %w", err)
	}

	var items []models.MenuItem
	if err := json.Unmarshal(val, &items); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return items, true, nil
}

func (r *RedisSnapshotCache) SaveSnapshot(ctx context.Context, items []models.MenuItem) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot in redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
