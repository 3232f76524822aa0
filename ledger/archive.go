package ledger

import (
	"math"

	"github.com/shopspring/decimal"

	"budget/models"
)

// ArchivePlan 归档类别的结果：需要确认时不包含任何写入
type ArchivePlan struct {
	Outcome    Outcome           `json:"outcome"`
	Categories []models.Category `json:"categories"`
	Accounts   []models.Account  `json:"accounts"`
}

// CurrentBalance 计入全部交易的余额
func CurrentBalance(acct *models.Account, txs []models.Transaction) decimal.Decimal {
	return Balance(acct, txs, EndOfTime)
}

// PlanArchiveCategory 从 effective 月起归档类别（类别组连同子类别），并归档不再被引用的专用储蓄账户。
// force=false 时，effective 及之后仍有交易或预算则冲突，专用账户余额不为 0 则拒绝，
// 会连带归档专用账户时返回需要确认
func PlanArchiveCategory(snap *Snapshot, tree *Tree, id uint, effective models.Month, force bool, eps decimal.Decimal) (*ArchivePlan, error) {
	cat, ok := tree.Get(id)
	if !ok {
		return nil, notFound("类别", id)
	}
	if !effective.Valid() {
		return nil, Invalid("month", "月份格式错误: %q", effective)
	}
	if effective.Before(cat.ValidFrom) {
		return nil, Invalid("month", "类别「%s」从 %s 起生效，不能从 %s 起归档", cat.Name, cat.ValidFrom, effective)
	}

	family := tree.Family(id)
	members := make(map[uint]*models.Category, len(family))
	for _, c := range family {
		members[c.ID] = c
	}

	dedicated := dedicatedAccounts(snap, family)
	if !force {
		if err := futureData(snap, members, effective); err != nil {
			return nil, err
		}
		for _, acct := range dedicated {
			if bal := CurrentBalance(acct, snap.Transactions); !IsZero(bal, eps) {
				return nil, &NonZeroBalanceError{AccountID: acct.ID, AccountName: acct.Name, Balance: bal}
			}
		}
	}

	orphans := orphanedAccounts(tree, members, dedicated)
	if !force && len(orphans) > 0 {
		return &ArchivePlan{Outcome: OutcomeNeedsConfirmation, Accounts: orphans}, nil
	}

	plan := &ArchivePlan{Outcome: OutcomeArchived}
	for _, c := range family {
		if !c.IsActive() && c.ArchivedFrom != nil && *c.ArchivedFrom == effective {
			continue
		}
		updated := *c
		from := effective
		updated.Status = models.StatusArchived
		updated.ArchivedFrom = &from
		plan.Categories = append(plan.Categories, updated)
	}
	for _, acct := range orphans {
		archived := acct
		archived.Status = models.StatusArchived
		plan.Accounts = append(plan.Accounts, archived)
	}
	return plan, nil
}

// futureData effective 及之后引用这些类别的交易或预算，报最早的月份
func futureData(snap *Snapshot, members map[uint]*models.Category, effective models.Month) error {
	var (
		first   models.Month
		firstBy *models.Category
		what    string
	)
	consider := func(catID uint, m models.Month, kind string) {
		c, ok := members[catID]
		if !ok || m.Before(effective) {
			return
		}
		if firstBy == nil || m.Before(first) {
			first, firstBy, what = m, c, kind
		}
	}
	for _, tx := range snap.Transactions {
		if tx.CategoryID != nil {
			consider(*tx.CategoryID, tx.TransactionDate.YearMonth(), "交易")
		}
	}
	for _, b := range snap.Budgets {
		consider(b.CategoryID, b.Month, "预算")
	}
	if firstBy == nil {
		return nil
	}
	return Conflict("类别「%s」在 %s 仍有%s，不能从 %s 起归档", firstBy.Name, first, what, effective)
}

// dedicatedAccounts 这些类别引用的未归档专用储蓄账户
func dedicatedAccounts(snap *Snapshot, family []*models.Category) []*models.Account {
	seen := make(map[uint]bool)
	var out []*models.Account
	for _, c := range family {
		if c.DedicatedAccountID == nil || seen[*c.DedicatedAccountID] {
			continue
		}
		seen[*c.DedicatedAccountID] = true
		if acct, ok := snap.Account(*c.DedicatedAccountID); ok && acct.IsActive() {
			out = append(out, acct)
		}
	}
	return out
}

// orphanedAccounts 归档后不再被任何未归档类别引用的专用账户
func orphanedAccounts(tree *Tree, members map[uint]*models.Category, dedicated []*models.Account) []models.Account {
	var out []models.Account
	for _, acct := range dedicated {
		used := false
		for _, c := range tree.byID {
			if _, in := members[c.ID]; in || !c.IsActive() || c.DedicatedAccountID == nil {
				continue
			}
			if *c.DedicatedAccountID == acct.ID {
				used = true
				break
			}
		}
		if !used {
			out = append(out, *acct)
		}
	}
	return out
}

// PlanArchiveAccount 归档账户：余额必须为 0；仍被未归档类别专用的账户应通过归档类别来归档。
// 已归档时返回 nil
func PlanArchiveAccount(snap *Snapshot, tree *Tree, id uint, eps decimal.Decimal) (*models.Account, error) {
	acct, ok := snap.Account(id)
	if !ok {
		return nil, notFound("账户", id)
	}
	if !acct.IsActive() {
		return nil, nil
	}
	if bal := CurrentBalance(acct, snap.Transactions); !IsZero(bal, eps) {
		return nil, &NonZeroBalanceError{AccountID: acct.ID, AccountName: acct.Name, Balance: bal}
	}
	for _, c := range tree.Ordered() {
		if c.IsActive() && c.DedicatedAccountID != nil && *c.DedicatedAccountID == acct.ID {
			return nil, Conflict("账户「%s」是类别「%s」的专用储蓄账户，请归档该类别", acct.Name, c.Name)
		}
	}
	archived := *acct
	archived.Status = models.StatusArchived
	return &archived, nil
}

// ParseEpsilon 配置中的容差，非法或非正数时使用默认值
func ParseEpsilon(v float64) decimal.Decimal {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultEpsilon
	}
	return decimal.NewFromFloat(v)
}
