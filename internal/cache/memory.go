package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// Memory 进程内缓存
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemory 创建内存缓存
func NewMemory() *Memory {
	return &Memory{items: map[string]memoryItem{}, now: time.Now}
}

// Get 读取缓存，过期的条目会被删除
func (m *Memory) Get(_ context.Context, key string, dest any) error {
	if m == nil {
		return fmt.Errorf("cache provider is nil")
	}
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || len(item.data) == 0 {
		return ErrMiss
	}
	if !item.expiresAt.IsZero() && m.now().After(item.expiresAt) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return ErrMiss
	}
	return json.Unmarshal(item.data, dest)
}

// Set 写入缓存，expiration<=0 表示不过期
func (m *Memory) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	if m == nil {
		return fmt.Errorf("cache provider is nil")
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = m.now().Add(expiration)
	}
	m.mu.Lock()
	m.items[key] = memoryItem{data: b, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Sweep 删除所有已过期条目，返回删除数量
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key, item := range m.items {
		if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
			delete(m.items, key)
			n++
		}
	}
	return n
}

// Len 当前条目数（含未清理的过期条目）
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
