package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeIncome   = "income"
	TransactionTypeExpense  = "expense"
	TransactionTypeTransfer = "transfer"
)

// Transaction 交易记录
// 专用储蓄类别的交易成对出现：主交易在普通账户上，镜像交易在储蓄账户上（OnBudget=false），
// 两条记录通过 LinkedTransactionID 互相指向
type Transaction struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	WorkspaceID          uint            `json:"workspace_id" gorm:"index;not null"`
	Type                 string          `json:"type" gorm:"size:10;not null;index"`
	Amount               decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	TransactionDate      Date            `json:"transaction_date" gorm:"not null;index"`
	AccountID            uint            `json:"account_id" gorm:"index;not null"`
	DestinationAccountID *uint           `json:"destination_account_id" gorm:"index"` // 仅转账
	CategoryID           *uint           `json:"category_id" gorm:"index"`            // 转账为空
	OnBudget             bool            `json:"on_budget" gorm:"not null"`
	LinkedTransactionID  *uint           `json:"linked_transaction_id" gorm:"index"`
	Note                 string          `json:"note" gorm:"size:255"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// IsLinked 是否属于专用储蓄交易对
func (t *Transaction) IsLinked() bool {
	return t.LinkedTransactionID != nil
}

// IsMirror 交易对中储蓄账户一侧的镜像记录
func (t *Transaction) IsMirror() bool {
	return t.IsLinked() && !t.OnBudget
}
