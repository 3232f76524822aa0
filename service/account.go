package service

import (
	"context"

	"github.com/shopspring/decimal"

	"budget/events"
	"budget/ledger"
	"budget/models"
)

// CreateAccount 新建账户
func (l *Ledger) CreateAccount(ctx context.Context, workspaceID uint, in ledger.NewAccount) (*models.Account, error) {
	acct, err := ledger.PlanCreateAccount(workspaceID, in, l.currency)
	if err != nil {
		return nil, err
	}
	if err := l.store.Accounts.Create(ctx, acct); err != nil {
		return nil, storeErr("创建账户", err)
	}
	l.emit(ctx, workspaceID, events.AccountCreated, accountDetails(acct))
	return acct, nil
}

// UpdateAccount 编辑账户
func (l *Ledger) UpdateAccount(ctx context.Context, workspaceID, id uint, patch ledger.AccountPatch) (*models.Account, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	acct, err := ledger.PlanUpdateAccount(snap, id, patch)
	if err != nil {
		return nil, err
	}
	if err := l.store.Accounts.Update(ctx, acct); err != nil {
		return nil, storeErr("更新账户", err)
	}
	l.emit(ctx, workspaceID, events.AccountUpdated, accountDetails(acct))
	return acct, nil
}

// ListAccounts 全部账户及截至 asOf 的余额，asOf 为空时计入全部交易（含未来日期）
func (l *Ledger) ListAccounts(ctx context.Context, workspaceID uint, asOf *models.Date) ([]ledger.AccountBalance, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return ledger.Balances(snap, l.cutoff(asOf)), nil
}

// AccountBalance 账户截至 asOf 的余额，asOf 为空时计入全部交易（含未来日期）
func (l *Ledger) AccountBalance(ctx context.Context, workspaceID, id uint, asOf *models.Date) (decimal.Decimal, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return decimal.Zero, err
	}
	acct, ok := snap.Account(id)
	if !ok {
		return decimal.Zero, &ledger.NotFoundError{Entity: "账户", ID: id}
	}
	return ledger.Balance(acct, snap.Transactions, l.cutoff(asOf)), nil
}

func (l *Ledger) cutoff(asOf *models.Date) models.Date {
	if asOf != nil {
		return *asOf
	}
	return ledger.EndOfTime
}

func accountDetails(a *models.Account) map[string]interface{} {
	return map[string]interface{}{
		"id":                   a.ID,
		"name":                 a.Name,
		"account_type":         a.AccountType,
		"currency":             a.Currency,
		"initial_balance":      a.InitialBalance.StringFixed(2),
		"initial_balance_date": a.InitialBalanceDate.String(),
		"status":               a.Status,
	}
}
