package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis 基于 Redis 的缓存，key 统一加前缀
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis 连接 Redis 并测试连通性
func NewRedis(ctx context.Context, addr, password string, db int, prefix string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{rdb: rdb, prefix: prefix}, nil
}

// Get 读取缓存
func (r *Redis) Get(ctx context.Context, key string, dest any) error {
	data, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set 写入缓存
func (r *Redis) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+key, data, expiration).Err()
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.rdb.Close()
}
