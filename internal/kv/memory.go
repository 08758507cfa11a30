package kv

import (
	"context"
	"sync"
)

// MemoryStore 内存实现，用于测试与临时运行
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string

	// SetErr 非 nil 时 Set 返回该错误（模拟配额溢出等写入失败）
	SetErr error
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get 实现 Store.Get
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set 实现 Store.Set
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.data[key] = value
	return nil
}

// Len 返回 key 数量
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
