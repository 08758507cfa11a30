package repository

import (
	"context"

	"github.com/ashwinyue/prts/internal/model"
	"gorm.io/gorm"
)

// OperatorRepository 干员数据访问
type OperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository 创建干员仓库
func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// List 按列表顺序返回全部干员
func (r *OperatorRepository) List(ctx context.Context) ([]*model.Operator, error) {
	var operators []*model.Operator
	err := r.db.WithContext(ctx).Order("position ASC").Find(&operators).Error
	return operators, err
}

// Count 干员数量
func (r *OperatorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Operator{}).Count(&n).Error
	return n, err
}

// ReplaceAll 以给定列表整体替换干员表
func (r *OperatorRepository) ReplaceAll(ctx context.Context, operators []*model.Operator) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Operator{}).Error; err != nil {
			return err
		}
		for i, op := range operators {
			op.Position = i
			if err := tx.Create(op).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
