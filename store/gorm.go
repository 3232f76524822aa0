package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"budget/models"
)

// NewGorm 基于 gorm 的存储
func NewGorm(db *gorm.DB) *Store {
	return &Store{
		Categories:   &gormTable[models.Category]{db: db, keys: categoryKeys},
		Accounts:     &gormTable[models.Account]{db: db, keys: accountKeys},
		Transactions: &gormTable[models.Transaction]{db: db, keys: transactionKeys},
		Budgets:      &gormTable[models.Budget]{db: db, keys: budgetKeys},
	}
}

type gormTable[T any] struct {
	db   *gorm.DB
	keys keys[T]
}

func (t *gormTable[T]) List(ctx context.Context, workspaceID uint) ([]T, error) {
	var rows []T
	if err := t.db.WithContext(ctx).Where("workspace_id = ?", workspaceID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *gormTable[T]) Get(ctx context.Context, workspaceID, id uint) (*T, error) {
	var row T
	err := t.db.WithContext(ctx).Where("workspace_id = ? AND id = ?", workspaceID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (t *gormTable[T]) Create(ctx context.Context, row *T) error {
	return t.db.WithContext(ctx).Create(row).Error
}

// Update 整行更新（包括零值字段），记录不存在时返回 ErrNotFound 而不是插入
func (t *gormTable[T]) Update(ctx context.Context, row *T) error {
	res := t.db.WithContext(ctx).Model(row).
		Where("workspace_id = ?", t.keys.workspace(row)).
		Select("*").Omit("created_at").
		Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTable[T]) Delete(ctx context.Context, workspaceID, id uint) error {
	res := t.db.WithContext(ctx).Where("workspace_id = ? AND id = ?", workspaceID, id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
