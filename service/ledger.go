// Package service 把 ledger 的计算结果写入记录存储：读取快照、执行写入、失败时补偿、发出事件。
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"budget/events"
	"budget/ledger"
	"budget/store"
)

// Options 账本参数
type Options struct {
	Epsilon         decimal.Decimal
	Policy          ledger.ElapsedPolicy
	DefaultCurrency string
	// Now 当前时间，测试时固定
	Now func() time.Time
}

// Ledger 账本服务
type Ledger struct {
	store    *store.Store
	sink     events.Sink
	log      *zap.Logger
	eps      decimal.Decimal
	policy   ledger.ElapsedPolicy
	currency string
	now      func() time.Time
}

// NewLedger 创建账本服务
func NewLedger(st *store.Store, sink events.Sink, log *zap.Logger, opts Options) *Ledger {
	if sink == nil {
		sink = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Epsilon.IsZero() {
		opts.Epsilon = ledger.DefaultEpsilon
	}
	if opts.Policy == "" {
		opts.Policy = ledger.PolicyEffective
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "CNY"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Ledger{
		store:    st,
		sink:     sink,
		log:      log,
		eps:      opts.Epsilon,
		policy:   opts.Policy,
		currency: opts.DefaultCurrency,
		now:      opts.Now,
	}
}

// snapshot 读取工作区全部数据
func (l *Ledger) snapshot(ctx context.Context, workspaceID uint) (*ledger.Snapshot, error) {
	var (
		snap ledger.Snapshot
		err  error
	)
	if snap.Categories, err = l.store.Categories.List(ctx, workspaceID); err != nil {
		return nil, storeErr("读取类别", err)
	}
	if snap.Accounts, err = l.store.Accounts.List(ctx, workspaceID); err != nil {
		return nil, storeErr("读取账户", err)
	}
	if snap.Transactions, err = l.store.Transactions.List(ctx, workspaceID); err != nil {
		return nil, storeErr("读取交易", err)
	}
	if snap.Budgets, err = l.store.Budgets.List(ctx, workspaceID); err != nil {
		return nil, storeErr("读取预算", err)
	}
	return &snap, nil
}

func storeErr(op string, err error) error {
	return &ledger.StoreError{Op: op, Err: err}
}

func (l *Ledger) emit(ctx context.Context, workspaceID uint, typ events.Type, details map[string]interface{}) {
	l.sink.Emit(ctx, events.New(workspaceID, typ, details))
}

// undo 多步写入的补偿栈，按相反顺序执行
type undo struct {
	steps []undoStep
}

type undoStep struct {
	what string
	fn   func(ctx context.Context) error
}

func (u *undo) push(what string, fn func(ctx context.Context) error) {
	u.steps = append(u.steps, undoStep{what: what, fn: fn})
}

// rollback 执行补偿，补偿失败的步骤记为残留
func (l *Ledger) rollback(ctx context.Context, u *undo, op string, cause error) error {
	var orphans []string
	for i := len(u.steps) - 1; i >= 0; i-- {
		step := u.steps[i]
		if err := step.fn(ctx); err != nil {
			l.log.Error("补偿失败", zap.String("op", op), zap.String("step", step.what), zap.Error(err))
			orphans = append(orphans, step.what)
		}
	}
	if len(orphans) > 0 {
		l.log.Error("多步写入部分失败", zap.String("op", op), zap.Strings("orphans", orphans), zap.Error(cause))
	} else if len(u.steps) > 0 {
		l.log.Warn("写入失败，已回滚", zap.String("op", op), zap.Error(cause))
	}
	return &ledger.StoreError{Op: op, Err: cause, Partial: len(orphans) > 0, Orphans: orphans}
}

func ref(kind string, id uint) string {
	return fmt.Sprintf("%s#%d", kind, id)
}
