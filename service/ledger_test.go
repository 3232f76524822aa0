package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"budget/events"
	"budget/ledger"
	"budget/models"
	"budget/store"
)

const ws uint = 1

var errDisk = errors.New("磁盘已满")

type fixture struct {
	ctx    context.Context
	mem    *store.Memory
	rec    *events.Recorder
	ledger *Ledger

	salary, life, food, transport, travel, withdraw *models.Category
	card, savings                                   *models.Account
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// newFixture 工资卡 1000（2024-01-01）、旅行基金（储蓄），
// 工资 → 月薪、旅行取出（专用）；生活 → 餐饮、交通、旅行储蓄（专用）
func newFixture(t *testing.T, now string) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), mem: store.NewMemory(), rec: &events.Recorder{}}
	at, err := time.Parse("2006-01-02", now)
	require.NoError(t, err)
	f.ledger = NewLedger(f.mem.Store, f.rec, zap.NewNop(), Options{Now: func() time.Time { return at }})

	from := models.MustMonth("2024-01")
	f.card = f.mustAccount(t, "工资卡", models.AccountTypeStandard, "1000")
	f.savings = f.mustAccount(t, "旅行基金", models.AccountTypeSavings, "0")

	f.salary = f.mustCategory(t, ledger.NewCategory{Name: "工资", Type: models.CategoryTypeIncome, ValidFrom: from})
	f.mustCategory(t, ledger.NewCategory{Name: "月薪", Type: models.CategoryTypeIncome, ParentID: &f.salary.ID, ValidFrom: from})
	f.withdraw = f.mustCategory(t, ledger.NewCategory{Name: "旅行取出", Type: models.CategoryTypeIncome, ParentID: &f.salary.ID,
		ValidFrom: from, DedicatedAccountID: &f.savings.ID})
	f.life = f.mustCategory(t, ledger.NewCategory{Name: "生活", Type: models.CategoryTypeExpense, ValidFrom: from})
	f.food = f.mustCategory(t, ledger.NewCategory{Name: "餐饮", Type: models.CategoryTypeExpense, ParentID: &f.life.ID, ValidFrom: from})
	f.transport = f.mustCategory(t, ledger.NewCategory{Name: "交通", Type: models.CategoryTypeExpense, ParentID: &f.life.ID, ValidFrom: from})
	f.travel = f.mustCategory(t, ledger.NewCategory{Name: "旅行储蓄", Type: models.CategoryTypeExpense, ParentID: &f.life.ID,
		ValidFrom: from, DedicatedAccountID: &f.savings.ID})
	f.rec.Reset()
	return f
}

func (f *fixture) mustAccount(t *testing.T, name, typ, initial string) *models.Account {
	t.Helper()
	a, err := f.ledger.CreateAccount(f.ctx, ws, ledger.NewAccount{
		Name: name, AccountType: typ, InitialBalance: dec(initial), InitialBalanceDate: date("2024-01-01"),
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) mustCategory(t *testing.T, in ledger.NewCategory) *models.Category {
	t.Helper()
	c, err := f.ledger.CreateCategory(f.ctx, ws, in)
	require.NoError(t, err)
	return c
}

func (f *fixture) expense(t *testing.T, cat *models.Category, amount, on string) []models.Transaction {
	t.Helper()
	txs, err := f.ledger.RecordExpense(f.ctx, ws, ledger.NewTransaction{
		Amount: dec(amount), Date: date(on), AccountID: f.card.ID, CategoryID: &cat.ID,
	})
	require.NoError(t, err)
	return txs
}

func (f *fixture) transactions(t *testing.T) []models.Transaction {
	t.Helper()
	rows, err := f.mem.Transactions.List(f.ctx, ws)
	require.NoError(t, err)
	return rows
}

// failNth 第 n 次（从 1 开始）命中 table/op 时失败
func failNth(table, op string, n int) store.Fault {
	count := 0
	return func(tb, o string) error {
		if tb != table || o != op {
			return nil
		}
		count++
		if count == n {
			return errDisk
		}
		return nil
	}
}
