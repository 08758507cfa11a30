package operator

import (
	"context"
	"fmt"

	"github.com/ashwinyue/prts/internal/kv"
	"github.com/ashwinyue/prts/internal/model"
	"github.com/ashwinyue/prts/internal/repository"
)

// Persister 干员列表的持久化后端
type Persister interface {
	// Load 返回已保存的干员，found=false 表示从未保存过
	Load(ctx context.Context) (ops []*model.Operator, found bool, err error)
	// Save 整体替换保存
	Save(ctx context.Context, ops []*model.Operator) error
}

// KVPersister 以 JSON 数组存放在 prts_operators
type KVPersister struct {
	store kv.Store
}

// NewKVPersister 创建 kv 持久化
func NewKVPersister(store kv.Store) *KVPersister {
	return &KVPersister{store: store}
}

// Load 实现 Persister
func (p *KVPersister) Load(ctx context.Context) ([]*model.Operator, bool, error) {
	var ops []*model.Operator
	found, err := kv.GetJSON(ctx, p.store, kv.KeyOperators, &ops)
	if err != nil || !found {
		return nil, found, err
	}
	return ops, true, nil
}

// Save 实现 Persister
func (p *KVPersister) Save(ctx context.Context, ops []*model.Operator) error {
	return kv.SetJSON(ctx, p.store, kv.KeyOperators, ops)
}

// RepositoryPersister 使用 operators 表
type RepositoryPersister struct {
	repo repository.OperatorStore
}

// NewRepositoryPersister 创建数据库持久化
func NewRepositoryPersister(repo repository.OperatorStore) *RepositoryPersister {
	return &RepositoryPersister{repo: repo}
}

// Load 实现 Persister，空表视为从未保存
func (p *RepositoryPersister) Load(ctx context.Context) ([]*model.Operator, bool, error) {
	n, err := p.repo.Count(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count operators: %w", err)
	}
	if n == 0 {
		return nil, false, nil
	}
	ops, err := p.repo.List(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list operators: %w", err)
	}
	return ops, true, nil
}

// Save 实现 Persister
func (p *RepositoryPersister) Save(ctx context.Context, ops []*model.Operator) error {
	if err := p.repo.ReplaceAll(ctx, ops); err != nil {
		return fmt.Errorf("failed to replace operators: %w", err)
	}
	return nil
}
