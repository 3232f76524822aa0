package ledger

import (
	"github.com/shopspring/decimal"

	"budget/models"
)

func uintPtr(v uint) *uint { return &v }

func monthPtr(s string) *models.Month {
	m := models.MustMonth(s)
	return &m
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func group(id uint, name string, typ models.CategoryType, order int) models.Category {
	return models.Category{
		ID: id, WorkspaceID: 1, Name: name, Type: typ, SortOrder: order,
		ValidFrom: models.MustMonth("2020-01"), Status: models.StatusActive,
	}
}

func sub(id, parent uint, name string, typ models.CategoryType, order int) models.Category {
	c := group(id, name, typ, order)
	c.ParentID = uintPtr(parent)
	return c
}

func account(id uint, name, typ, initial, on string) models.Account {
	return models.Account{
		ID: id, WorkspaceID: 1, Name: name, AccountType: typ, Currency: "CNY",
		InitialBalance: dec(initial), InitialBalanceDate: date(on), Status: models.StatusActive,
	}
}

func expense(id, acct, cat uint, amount, on string) models.Transaction {
	return models.Transaction{
		ID: id, WorkspaceID: 1, Type: models.TransactionTypeExpense, Amount: dec(amount),
		TransactionDate: date(on), AccountID: acct, CategoryID: uintPtr(cat), OnBudget: true,
	}
}

func income(id, acct, cat uint, amount, on string) models.Transaction {
	tx := expense(id, acct, cat, amount, on)
	tx.Type = models.TransactionTypeIncome
	return tx
}

func budget(id, cat uint, month, amount string) models.Budget {
	return models.Budget{ID: id, WorkspaceID: 1, CategoryID: cat, Month: models.MustMonth(month), Amount: dec(amount)}
}

// 工资(1) → 月薪(2)；生活(10) → 餐饮(11)、交通(12)、旅行储蓄(13, 专用账户 2)、旅行取出(14, 专用账户 2)
func sampleSnapshot() *Snapshot {
	travel := sub(13, 10, "旅行储蓄", models.CategoryTypeExpense, 3)
	travel.DedicatedAccountID = uintPtr(2)
	withdraw := sub(14, 1, "旅行取出", models.CategoryTypeIncome, 2)
	withdraw.DedicatedAccountID = uintPtr(2)
	return &Snapshot{
		Categories: []models.Category{
			group(10, "生活", models.CategoryTypeExpense, 1),
			sub(11, 10, "餐饮", models.CategoryTypeExpense, 1),
			sub(12, 10, "交通", models.CategoryTypeExpense, 2),
			travel,
			group(1, "工资", models.CategoryTypeIncome, 1),
			sub(2, 1, "月薪", models.CategoryTypeIncome, 1),
			withdraw,
		},
		Accounts: []models.Account{
			account(1, "工资卡", models.AccountTypeStandard, "1000", "2024-01-01"),
			account(2, "旅行基金", models.AccountTypeSavings, "0", "2024-01-01"),
			account(3, "零钱", models.AccountTypeStandard, "50", "2024-01-01"),
		},
	}
}
