// Package ledger 预算账本核心：类别树、余额、储蓄交易对、月度预算、现金流预测与归档校验。
// 这里全部是对快照的纯函数，读写记录存储由 service 包负责。
package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError 输入不合法（类别方向/层级错误、缺少必填项等），发生在任何写入之前
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid 构造 ValidationError
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError 与已有数据冲突（归档被未来数据阻止、同级排序重复等）
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Conflict 构造 ConflictError
func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NonZeroBalanceError 账户余额不为 0，不能归档
type NonZeroBalanceError struct {
	AccountID   uint
	AccountName string
	Balance     decimal.Decimal
}

func (e *NonZeroBalanceError) Error() string {
	return fmt.Sprintf("账户「%s」余额为 %s，不为 0，无法归档", e.AccountName, e.Balance.StringFixed(2))
}

// NotFoundError 引用的记录不存在
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s不存在: %d", e.Entity, e.ID)
}

func notFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// StoreError 记录存储失败；多步写入中途失败且补偿也失败时 Partial 为 true，
// Orphans 列出残留的记录，由调用方决定如何处理
type StoreError struct {
	Op      string
	Err     error
	Partial bool
	Orphans []string
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s失败: %v", e.Op, e.Err)
	if e.Partial {
		msg += "（部分写入未能回滚: " + strings.Join(e.Orphans, ", ") + "）"
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Outcome 归档操作的结果
type Outcome string

const (
	// OutcomeArchived 已归档
	OutcomeArchived Outcome = "archived"
	// OutcomeNeedsConfirmation 需要确认（会连带归档专用储蓄账户），以 force=true 重新调用
	OutcomeNeedsConfirmation Outcome = "needs_confirmation"
)
