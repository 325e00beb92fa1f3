package util

import (
	"context"
	"time"
)

// Retry 最多调用 fn maxAttempts 次，间隔从 baseDelay 开始指数增长。
// retryable 为 nil 时所有错误都重试，否则仅重试 retryable 返回 true 的错误。
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, retryable func(error) bool, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	delay := baseDelay
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}

		// 最后一次失败后不再等待
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return err
}
