package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"budget/models"
)

// DefaultEpsilon 余额视为 0 的容差
var DefaultEpsilon = decimal.RequireFromString("0.001")

// Delta 交易对某账户余额的影响：收入 +，支出 -，转账源 -、目标 +，无关为 0
func Delta(tx *models.Transaction, accountID uint) decimal.Decimal {
	d := decimal.Zero
	switch tx.Type {
	case models.TransactionTypeIncome:
		if tx.AccountID == accountID {
			d = d.Add(tx.Amount)
		}
	case models.TransactionTypeExpense:
		if tx.AccountID == accountID {
			d = d.Sub(tx.Amount)
		}
	case models.TransactionTypeTransfer:
		if tx.AccountID == accountID {
			d = d.Sub(tx.Amount)
		}
		if tx.DestinationAccountID != nil && *tx.DestinationAccountID == accountID {
			d = d.Add(tx.Amount)
		}
	}
	return d
}

// EndOfTime 不限截止日期时使用，计入全部交易
var EndOfTime = models.NewDate(9999, time.December, 31)

// Balance 截至 asOf（含当天）的账户余额。初始余额只有在生效日期不晚于 asOf 时计入；与交易顺序无关
func Balance(acct *models.Account, txs []models.Transaction, asOf models.Date) decimal.Decimal {
	bal := decimal.Zero
	if !acct.InitialBalanceDate.After(asOf) {
		bal = bal.Add(acct.InitialBalance)
	}
	for i := range txs {
		if txs[i].TransactionDate.After(asOf) {
			continue
		}
		bal = bal.Add(Delta(&txs[i], acct.ID))
	}
	return bal
}

// IsZero |v| <= eps
func IsZero(v, eps decimal.Decimal) bool {
	return v.Abs().LessThanOrEqual(eps)
}

// AccountBalance 账户及其余额
type AccountBalance struct {
	models.Account
	Balance decimal.Decimal `json:"balance"`
}

// Balances 全部账户截至 asOf 的余额，保持快照中的账户顺序
func Balances(snap *Snapshot, asOf models.Date) []AccountBalance {
	out := make([]AccountBalance, 0, len(snap.Accounts))
	for i := range snap.Accounts {
		acct := &snap.Accounts[i]
		out = append(out, AccountBalance{Account: *acct, Balance: Balance(acct, snap.Transactions, asOf)})
	}
	return out
}
