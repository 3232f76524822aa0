package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget 月度预算，每个（子类别, 月份）至多一条
// 金额为 0 且无备注的预算直接删除，不落库
type Budget struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	WorkspaceID uint            `json:"workspace_id" gorm:"not null;uniqueIndex:idx_budget_category_month"`
	CategoryID  uint            `json:"category_id" gorm:"not null;uniqueIndex:idx_budget_category_month"`
	Month       Month           `json:"month" gorm:"size:7;not null;uniqueIndex:idx_budget_category_month"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Note        string          `json:"note" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// IsEmpty 金额为 0 且没有备注
func (b *Budget) IsEmpty() bool {
	return b.Amount.IsZero() && b.Note == ""
}
