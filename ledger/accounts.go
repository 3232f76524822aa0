package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"budget/models"
)

// NewAccount 新建账户的输入
type NewAccount struct {
	Name               string
	AccountType        string
	Currency           string
	InitialBalance     decimal.Decimal
	InitialBalanceDate models.Date
}

// PlanCreateAccount 校验并返回待写入的账户；未指定币种时使用 defaultCurrency
func PlanCreateAccount(workspaceID uint, in NewAccount, defaultCurrency string) (*models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, Invalid("name", "名称不能为空")
	}
	if in.AccountType != models.AccountTypeStandard && in.AccountType != models.AccountTypeSavings {
		return nil, Invalid("account_type", "未知的账户类型: %q", in.AccountType)
	}
	if in.InitialBalanceDate.IsZero() {
		return nil, Invalid("initial_balance_date", "初始余额日期不能为空")
	}
	currency, err := normalizeCurrency(in.Currency, defaultCurrency)
	if err != nil {
		return nil, err
	}
	return &models.Account{
		WorkspaceID:        workspaceID,
		Name:               name,
		AccountType:        in.AccountType,
		Currency:           currency,
		InitialBalance:     in.InitialBalance,
		InitialBalanceDate: in.InitialBalanceDate,
		Status:             models.StatusActive,
	}, nil
}

// AccountPatch 编辑账户，nil 字段保持不变。账户类型创建后不能修改
type AccountPatch struct {
	Name               *string
	Currency           *string
	InitialBalance     *decimal.Decimal
	InitialBalanceDate *models.Date
}

// PlanUpdateAccount 返回编辑后的账户
func PlanUpdateAccount(snap *Snapshot, id uint, patch AccountPatch) (*models.Account, error) {
	cur, ok := snap.Account(id)
	if !ok {
		return nil, notFound("账户", id)
	}
	updated := *cur
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, Invalid("name", "名称不能为空")
		}
		updated.Name = name
	}
	if patch.Currency != nil {
		currency, err := normalizeCurrency(*patch.Currency, cur.Currency)
		if err != nil {
			return nil, err
		}
		updated.Currency = currency
	}
	if patch.InitialBalance != nil {
		updated.InitialBalance = *patch.InitialBalance
	}
	if patch.InitialBalanceDate != nil {
		if patch.InitialBalanceDate.IsZero() {
			return nil, Invalid("initial_balance_date", "初始余额日期不能为空")
		}
		updated.InitialBalanceDate = *patch.InitialBalanceDate
	}
	return &updated, nil
}

func normalizeCurrency(code, fallback string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = strings.ToUpper(fallback)
	}
	if len(code) != 3 {
		return "", Invalid("currency", "币种应为 3 位代码: %q", code)
	}
	return code, nil
}
