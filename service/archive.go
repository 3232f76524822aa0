package service

import (
	"context"

	"budget/events"
	"budget/ledger"
	"budget/models"
)

// ArchiveCategory 从 month 起归档类别（类别组连同子类别）以及不再被引用的专用储蓄账户。
// 返回 OutcomeNeedsConfirmation 时没有任何写入，需以 force=true 重新调用
func (l *Ledger) ArchiveCategory(ctx context.Context, workspaceID, id uint, month models.Month, force bool) (*ledger.ArchivePlan, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	tree := ledger.NewTree(snap.Categories)
	plan, err := ledger.PlanArchiveCategory(snap, tree, id, month, force, l.eps)
	if err != nil || plan.Outcome == ledger.OutcomeNeedsConfirmation {
		return plan, err
	}

	var u undo
	for i := range plan.Categories {
		c := &plan.Categories[i]
		cur, _ := tree.Get(c.ID)
		original := *cur
		if err := l.store.Categories.Update(ctx, c); err != nil {
			return nil, l.rollback(ctx, &u, "归档类别", err)
		}
		u.push(ref("category", original.ID), func(ctx context.Context) error {
			return l.store.Categories.Update(ctx, &original)
		})
	}
	for i := range plan.Accounts {
		a := &plan.Accounts[i]
		cur, _ := snap.Account(a.ID)
		original := *cur
		if err := l.store.Accounts.Update(ctx, a); err != nil {
			return nil, l.rollback(ctx, &u, "归档类别", err)
		}
		u.push(ref("account", original.ID), func(ctx context.Context) error {
			return l.store.Accounts.Update(ctx, &original)
		})
	}

	for i := range plan.Categories {
		l.emit(ctx, workspaceID, events.CategoryArchived, categoryDetails(&plan.Categories[i]))
	}
	for i := range plan.Accounts {
		l.emit(ctx, workspaceID, events.AccountArchived, accountDetails(&plan.Accounts[i]))
	}
	return plan, nil
}

// ArchiveAccount 归档余额为 0 的账户；已归档时原样返回
func (l *Ledger) ArchiveAccount(ctx context.Context, workspaceID, id uint) (*models.Account, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	acct, err := ledger.PlanArchiveAccount(snap, ledger.NewTree(snap.Categories), id, l.eps)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		cur, _ := snap.Account(id)
		return cur, nil
	}
	if err := l.store.Accounts.Update(ctx, acct); err != nil {
		return nil, storeErr("归档账户", err)
	}
	l.emit(ctx, workspaceID, events.AccountArchived, accountDetails(acct))
	return acct, nil
}
