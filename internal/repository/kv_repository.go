package repository

import (
	"context"
	"errors"

	"github.com/ashwinyue/prts/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVRepository 键值数据访问
type KVRepository struct {
	db *gorm.DB
}

// NewKVRepository 创建键值仓库
func NewKVRepository(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get 获取记录，不存在时返回 nil
func (r *KVRepository) Get(ctx context.Context, key string) (*model.KVEntry, error) {
	var entry model.KVEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Put 写入或覆盖记录
func (r *KVRepository) Put(ctx context.Context, key, value string) error {
	entry := &model.KVEntry{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
}
