package service

import (
	"context"
	"sort"

	"budget/events"
	"budget/ledger"
	"budget/models"
)

// RecordTransaction 记一笔账。专用储蓄类别生成交易对：先写主交易，再写指向它的镜像，
// 最后让主交易指回镜像；任一步失败都会删除已写入的记录
func (l *Ledger) RecordTransaction(ctx context.Context, workspaceID uint, in ledger.NewTransaction) ([]models.Transaction, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	w, err := ledger.PlanRecord(snap, ledger.NewTree(snap.Categories), workspaceID, in)
	if err != nil {
		return nil, err
	}

	var written []models.Transaction
	switch w := w.(type) {
	case ledger.SingleTransaction:
		tx := w.Tx
		if err := l.store.Transactions.Create(ctx, &tx); err != nil {
			return nil, storeErr("记账", err)
		}
		written = []models.Transaction{tx}
	case ledger.TransactionPair:
		written, err = l.createPair(ctx, w)
		if err != nil {
			return nil, err
		}
	}
	for i := range written {
		l.emit(ctx, workspaceID, events.TransactionCreated, transactionDetails(&written[i]))
	}
	return written, nil
}

func (l *Ledger) createPair(ctx context.Context, pair ledger.TransactionPair) ([]models.Transaction, error) {
	const op = "记录专用储蓄交易"
	primary, mirror := pair.Primary, pair.Mirror
	var u undo

	if err := l.store.Transactions.Create(ctx, &primary); err != nil {
		return nil, storeErr(op, err)
	}
	u.push(ref("transaction", primary.ID), l.deleteTx(primary.WorkspaceID, primary.ID))

	mirror.LinkedTransactionID = &primary.ID
	if err := l.store.Transactions.Create(ctx, &mirror); err != nil {
		return nil, l.rollback(ctx, &u, op, err)
	}
	u.push(ref("transaction", mirror.ID), l.deleteTx(mirror.WorkspaceID, mirror.ID))

	mirrorID := mirror.ID
	primary.LinkedTransactionID = &mirrorID
	if err := l.store.Transactions.Update(ctx, &primary); err != nil {
		return nil, l.rollback(ctx, &u, op, err)
	}
	return []models.Transaction{primary, mirror}, nil
}

func (l *Ledger) deleteTx(workspaceID, id uint) func(context.Context) error {
	return func(ctx context.Context) error {
		return l.store.Transactions.Delete(ctx, workspaceID, id)
	}
}

// RecordIncome 记收入
func (l *Ledger) RecordIncome(ctx context.Context, workspaceID uint, in ledger.NewTransaction) ([]models.Transaction, error) {
	in.Type = models.TransactionTypeIncome
	return l.RecordTransaction(ctx, workspaceID, in)
}

// RecordExpense 记支出
func (l *Ledger) RecordExpense(ctx context.Context, workspaceID uint, in ledger.NewTransaction) ([]models.Transaction, error) {
	in.Type = models.TransactionTypeExpense
	return l.RecordTransaction(ctx, workspaceID, in)
}

// RecordTransfer 记转账
func (l *Ledger) RecordTransfer(ctx context.Context, workspaceID uint, in ledger.NewTransaction) ([]models.Transaction, error) {
	in.Type = models.TransactionTypeTransfer
	return l.RecordTransaction(ctx, workspaceID, in)
}

// UpdateTransaction 编辑交易；交易对的金额、日期和备注同步到另一侧
func (l *Ledger) UpdateTransaction(ctx context.Context, workspaceID, id uint, patch ledger.TransactionPatch) ([]models.Transaction, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	w, err := ledger.PlanUpdate(snap, ledger.NewTree(snap.Categories), id, patch)
	if err != nil {
		return nil, err
	}

	const op = "更新交易"
	legs := w.Legs()
	var u undo
	for i := range legs {
		cur, _ := snap.Transaction(legs[i].ID)
		original := *cur
		if err := l.store.Transactions.Update(ctx, &legs[i]); err != nil {
			return nil, l.rollback(ctx, &u, op, err)
		}
		u.push(ref("transaction", original.ID), func(ctx context.Context) error {
			return l.store.Transactions.Update(ctx, &original)
		})
	}
	for i := range legs {
		l.emit(ctx, workspaceID, events.TransactionUpdated, transactionDetails(&legs[i]))
	}
	return legs, nil
}

// DeleteTransaction 删除交易；交易对两侧一起删除，第二条删除失败时恢复第一条
func (l *Ledger) DeleteTransaction(ctx context.Context, workspaceID, id uint) error {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return err
	}
	w, err := ledger.PlanDelete(snap, id)
	if err != nil {
		return err
	}

	const op = "删除交易"
	legs := w.Legs()
	var u undo
	for i := range legs {
		leg := legs[i]
		if err := l.store.Transactions.Delete(ctx, workspaceID, leg.ID); err != nil {
			return l.rollback(ctx, &u, op, err)
		}
		u.push(ref("transaction", leg.ID), func(ctx context.Context) error {
			restored := leg
			return l.store.Transactions.Create(ctx, &restored)
		})
	}
	for i := range legs {
		l.emit(ctx, workspaceID, events.TransactionDeleted, transactionDetails(&legs[i]))
	}
	return nil
}

// TransactionFilter 交易筛选条件，空字段不筛选
type TransactionFilter struct {
	Month      *models.Month
	AccountID  *uint
	CategoryID *uint
}

func (f TransactionFilter) match(tx *models.Transaction) bool {
	if f.Month != nil && tx.TransactionDate.YearMonth() != *f.Month {
		return false
	}
	if f.AccountID != nil && tx.AccountID != *f.AccountID &&
		(tx.DestinationAccountID == nil || *tx.DestinationAccountID != *f.AccountID) {
		return false
	}
	if f.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *f.CategoryID) {
		return false
	}
	return true
}

// ListTransactions 按日期倒序列出交易
func (l *Ledger) ListTransactions(ctx context.Context, workspaceID uint, filter TransactionFilter) ([]models.Transaction, error) {
	rows, err := l.store.Transactions.List(ctx, workspaceID)
	if err != nil {
		return nil, storeErr("读取交易", err)
	}
	out := make([]models.Transaction, 0, len(rows))
	for i := range rows {
		if filter.match(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate.Time) {
			return out[i].TransactionDate.After(out[j].TransactionDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func transactionDetails(tx *models.Transaction) map[string]interface{} {
	d := map[string]interface{}{
		"id":               tx.ID,
		"type":             tx.Type,
		"amount":           tx.Amount.StringFixed(2),
		"transaction_date": tx.TransactionDate.String(),
		"account_id":       tx.AccountID,
		"on_budget":        tx.OnBudget,
	}
	if tx.CategoryID != nil {
		d["category_id"] = *tx.CategoryID
	}
	if tx.DestinationAccountID != nil {
		d["destination_account_id"] = *tx.DestinationAccountID
	}
	if tx.LinkedTransactionID != nil {
		d["linked_transaction_id"] = *tx.LinkedTransactionID
	}
	return d
}
