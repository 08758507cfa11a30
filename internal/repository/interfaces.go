// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"context"

	"github.com/ashwinyue/prts/internal/model"
)

// KVStore 键值表数据访问接口
type KVStore interface {
	// Get 键不存在时返回 nil, nil
	Get(ctx context.Context, key string) (*model.KVEntry, error)
	Put(ctx context.Context, key, value string) error
}

// OperatorStore 干员表数据访问接口
type OperatorStore interface {
	List(ctx context.Context) ([]*model.Operator, error)
	Count(ctx context.Context) (int64, error)
	// ReplaceAll 在一个事务内整体替换干员列表
	ReplaceAll(ctx context.Context, operators []*model.Operator) error
}

var (
	_ KVStore       = (*KVRepository)(nil)
	_ OperatorStore = (*OperatorRepository)(nil)
)
