package kv

import (
	"context"

	"github.com/ashwinyue/prts/internal/repository"
)

// DatabaseStore 基于 kv_entries 表的实现
type DatabaseStore struct {
	repo repository.KVStore
}

// NewDatabaseStore 创建数据库存储
func NewDatabaseStore(repo repository.KVStore) *DatabaseStore {
	return &DatabaseStore{repo: repo}
}

// Get 实现 Store.Get
func (s *DatabaseStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.repo == nil {
		return "", false, ErrClosed
	}
	entry, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if entry == nil {
		return "", false, nil
	}
	return entry.Value, true, nil
}

// Set 实现 Store.Set
func (s *DatabaseStore) Set(ctx context.Context, key, value string) error {
	if s.repo == nil {
		return ErrClosed
	}
	return s.repo.Put(ctx, key, value)
}
