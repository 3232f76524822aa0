package service

import (
	"context"
	"fmt"
	"sort"

	"budget/events"
	"budget/ledger"
	"budget/models"
)

// UpsertBudget 设置某类别某月的预算，返回写入后的记录；被删除或无需写入时返回 nil
func (l *Ledger) UpsertBudget(ctx context.Context, workspaceID uint, in ledger.BudgetInput) (*models.Budget, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	writes, err := ledger.PlanUpsert(snap, ledger.NewTree(snap.Categories), workspaceID, in)
	if err != nil {
		return nil, err
	}
	if len(writes) == 0 {
		b, _ := ledger.IndexBudgets(snap.Budgets).Get(in.CategoryID, in.Month)
		return b, nil
	}
	applied, err := l.applyBudgetWrites(ctx, workspaceID, "设置预算", writes)
	if err != nil {
		return nil, err
	}
	if applied[0].Op == ledger.BudgetDelete {
		return nil, nil
	}
	return &applied[0].Budget, nil
}

// PublishForward 把 from 月的预算复制到当年之后的月份，返回写入条数
func (l *Ledger) PublishForward(ctx context.Context, workspaceID, categoryID uint, from models.Month, includeSub bool) (int, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	writes, err := ledger.PlanPublishForward(snap, ledger.NewTree(snap.Categories), workspaceID, categoryID, from, includeSub)
	if err != nil {
		return 0, err
	}
	applied, err := l.applyBudgetWrites(ctx, workspaceID, "发布预算", writes)
	return len(applied), err
}

// PublishForwardAll 对全部子类别执行 PublishForward
func (l *Ledger) PublishForwardAll(ctx context.Context, workspaceID uint, from models.Month) (int, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	writes, err := ledger.PlanPublishForwardAll(snap, ledger.NewTree(snap.Categories), workspaceID, from)
	if err != nil {
		return 0, err
	}
	applied, err := l.applyBudgetWrites(ctx, workspaceID, "发布预算", writes)
	return len(applied), err
}

// applyBudgetWrites 依次执行预算写入。批量发布可以重复执行，中途失败不回滚，
// 已写入的部分记在 StoreError.Orphans 中
func (l *Ledger) applyBudgetWrites(ctx context.Context, workspaceID uint, op string, writes []ledger.BudgetWrite) ([]ledger.BudgetWrite, error) {
	applied := make([]ledger.BudgetWrite, 0, len(writes))
	for _, w := range writes {
		b := w.Budget
		var (
			err error
			typ events.Type
		)
		switch w.Op {
		case ledger.BudgetCreate:
			typ = events.BudgetCreated
			err = l.store.Budgets.Create(ctx, &b)
		case ledger.BudgetUpdate:
			typ = events.BudgetUpdated
			err = l.store.Budgets.Update(ctx, &b)
		case ledger.BudgetDelete:
			typ = events.BudgetDeleted
			err = l.store.Budgets.Delete(ctx, workspaceID, b.ID)
		}
		if err != nil {
			se := &ledger.StoreError{Op: op, Err: err, Partial: len(applied) > 0}
			for _, a := range applied {
				se.Orphans = append(se.Orphans, fmt.Sprintf("budget:%d/%s", a.Budget.CategoryID, a.Budget.Month))
			}
			return applied, se
		}
		applied = append(applied, ledger.BudgetWrite{Op: w.Op, Budget: b})
		l.emit(ctx, workspaceID, typ, budgetDetails(&b))
	}
	return applied, nil
}

// ListBudgets 某年的全部预算，按类别、月份排序
func (l *Ledger) ListBudgets(ctx context.Context, workspaceID uint, year int) ([]models.Budget, error) {
	rows, err := l.store.Budgets.List(ctx, workspaceID)
	if err != nil {
		return nil, storeErr("读取预算", err)
	}
	out := ledger.BudgetsInYear(rows, year)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CategoryID != out[j].CategoryID {
			return out[i].CategoryID < out[j].CategoryID
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func budgetDetails(b *models.Budget) map[string]interface{} {
	return map[string]interface{}{
		"id":          b.ID,
		"category_id": b.CategoryID,
		"month":       b.Month,
		"amount":      b.Amount.StringFixed(2),
		"note":        b.Note,
	}
}
