package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps geocode results in Redis as JSON
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects and pings the server
func NewRedisStore(addr, password string, db int, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected", zap.String("addr", addr), zap.Int("db", db))

	return &RedisStore{client: client, logger: logger}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (models.GeoPoint, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.GeoPoint{}, false, nil
	}
	if err != nil {
		return models.GeoPoint{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var point models.GeoPoint
	if err := json.Unmarshal(data, &point); err != nil {
		return models.GeoPoint{}, false, fmt.Errorf("decode cached point: %w", err)
	}
	return point, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, point models.GeoPoint, ttl time.Duration) error {
	data, err := json.Marshal(point)
	if err != nil {
		return fmt.Errorf("encode point: %w", err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	r.logger.Info("Closing Redis connection")
	return r.client.Close()
}
