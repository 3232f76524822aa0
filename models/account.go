package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountTypeStandard = "standard"
	AccountTypeSavings  = "savings"
)

// Account 账户，余额由初始余额加交易流计算得出，不单独存储
type Account struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	WorkspaceID        uint            `json:"workspace_id" gorm:"index;not null"`
	Name               string          `json:"name" gorm:"size:100;not null"`
	AccountType        string          `json:"account_type" gorm:"size:20;not null"`
	Currency           string          `json:"currency" gorm:"size:3;not null"` // 仅记录，不做换算
	InitialBalance     decimal.Decimal `json:"initial_balance" gorm:"type:decimal(14,2);not null"`
	InitialBalanceDate Date            `json:"initial_balance_date" gorm:"not null"`
	Status             string          `json:"status" gorm:"size:20;not null;default:active;index"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TableName 设置表名
func (Account) TableName() string {
	return "accounts"
}

func (a *Account) IsSavings() bool {
	return a.AccountType == AccountTypeSavings
}

func (a *Account) IsActive() bool {
	return a.Status != StatusArchived
}
