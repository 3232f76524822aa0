// Package store 记录存储边界：按工作区读写类别、账户、交易和预算。
// 只提供单行的增删改查，不提供多行事务，多步写入的补偿由 service 负责。
package store

import (
	"context"
	"errors"

	"budget/models"
)

// ErrNotFound 记录不存在（或不属于该工作区）
var ErrNotFound = errors.New("记录不存在")

// Table 一类记录的存储
type Table[T any] interface {
	List(ctx context.Context, workspaceID uint) ([]T, error)
	Get(ctx context.Context, workspaceID, id uint) (*T, error)
	// Create 写入新记录并回填 ID；ID 非 0 时按该 ID 写入（用于补偿时恢复已删除的记录）
	Create(ctx context.Context, row *T) error
	Update(ctx context.Context, row *T) error
	Delete(ctx context.Context, workspaceID, id uint) error
}

// Store 全部记录表
type Store struct {
	Categories   Table[models.Category]
	Accounts     Table[models.Account]
	Transactions Table[models.Transaction]
	Budgets      Table[models.Budget]
}

// keys 从记录中取主键和工作区
type keys[T any] struct {
	id        func(*T) *uint
	workspace func(*T) uint
}

var (
	categoryKeys = keys[models.Category]{
		id:        func(r *models.Category) *uint { return &r.ID },
		workspace: func(r *models.Category) uint { return r.WorkspaceID },
	}
	accountKeys = keys[models.Account]{
		id:        func(r *models.Account) *uint { return &r.ID },
		workspace: func(r *models.Account) uint { return r.WorkspaceID },
	}
	transactionKeys = keys[models.Transaction]{
		id:        func(r *models.Transaction) *uint { return &r.ID },
		workspace: func(r *models.Transaction) uint { return r.WorkspaceID },
	}
	budgetKeys = keys[models.Budget]{
		id:        func(r *models.Budget) *uint { return &r.ID },
		workspace: func(r *models.Budget) uint { return r.WorkspaceID },
	}
)
