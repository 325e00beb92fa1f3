// Package cache 预测服务响应的缓存，支持内存与 Redis 两种实现
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss 缓存不存在或已过期
var ErrMiss = errors.New("cache miss")

// Provider 缓存接口，值以 JSON 编码保存
type Provider interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}
