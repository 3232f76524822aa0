package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"budget/models"
)

// BudgetOp 预算写入类型
type BudgetOp string

const (
	BudgetCreate BudgetOp = "create"
	BudgetUpdate BudgetOp = "update"
	BudgetDelete BudgetOp = "delete"
)

// BudgetWrite 一条待执行的预算写入
type BudgetWrite struct {
	Op     BudgetOp
	Budget models.Budget
}

type budgetKey struct {
	categoryID uint
	month      models.Month
}

// BudgetIndex （类别, 月份）→ 预算
type BudgetIndex map[budgetKey]*models.Budget

// IndexBudgets 建立预算索引，指向 budgets 的元素
func IndexBudgets(budgets []models.Budget) BudgetIndex {
	idx := make(BudgetIndex, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		idx[budgetKey{b.CategoryID, b.Month}] = b
	}
	return idx
}

// Get 查找预算
func (idx BudgetIndex) Get(categoryID uint, month models.Month) (*models.Budget, bool) {
	b, ok := idx[budgetKey{categoryID, month}]
	return b, ok
}

// Amount 预算金额，没有记录为 0
func (idx BudgetIndex) Amount(categoryID uint, month models.Month) decimal.Decimal {
	if b, ok := idx.Get(categoryID, month); ok {
		return b.Amount
	}
	return decimal.Zero
}

// BudgetInput 设置预算的输入，Note 为 nil 表示保留原备注
type BudgetInput struct {
	CategoryID uint
	Month      models.Month
	Amount     decimal.Decimal
	Note       *string
}

// PlanUpsert 设置某类别某月的预算。结果为 0 且无备注时删除
func PlanUpsert(snap *Snapshot, tree *Tree, workspaceID uint, in BudgetInput) ([]BudgetWrite, error) {
	if !in.Month.Valid() {
		return nil, Invalid("month", "月份格式错误: %q", in.Month)
	}
	if in.Amount.IsNegative() {
		return nil, Invalid("amount", "预算金额不能为负数")
	}
	cat, err := budgetCategory(tree, in.CategoryID)
	if err != nil {
		return nil, err
	}

	idx := IndexBudgets(snap.Budgets)
	existing, ok := idx.Get(cat.ID, in.Month)
	// 不可见的月份只允许清空遗留的记录
	if !cat.VisibleIn(in.Month) && !(ok && clears(existing, in)) {
		return nil, Invalid("month", "类别「%s」在 %s 不可用", cat.Name, in.Month)
	}
	if !ok {
		b := models.Budget{WorkspaceID: workspaceID, CategoryID: cat.ID, Month: in.Month, Amount: in.Amount}
		if in.Note != nil {
			b.Note = strings.TrimSpace(*in.Note)
		}
		if b.IsEmpty() {
			return nil, nil
		}
		return []BudgetWrite{{Op: BudgetCreate, Budget: b}}, nil
	}

	updated := *existing
	updated.Amount = in.Amount
	if in.Note != nil {
		updated.Note = strings.TrimSpace(*in.Note)
	}
	if updated.Amount.Equal(existing.Amount) && updated.Note == existing.Note {
		return nil, nil
	}
	return []BudgetWrite{change(existing, updated)}, nil
}

// clears 写入后记录是否变空（金额为 0 且无备注）
func clears(existing *models.Budget, in BudgetInput) bool {
	note := existing.Note
	if in.Note != nil {
		note = strings.TrimSpace(*in.Note)
	}
	return in.Amount.IsZero() && note == ""
}

// change 已有记录变更：变空删除，否则更新
func change(existing *models.Budget, updated models.Budget) BudgetWrite {
	if updated.IsEmpty() {
		return BudgetWrite{Op: BudgetDelete, Budget: *existing}
	}
	return BudgetWrite{Op: BudgetUpdate, Budget: updated}
}

func budgetCategory(tree *Tree, id uint) (*models.Category, error) {
	cat, ok := tree.Get(id)
	if !ok {
		return nil, notFound("类别", id)
	}
	if cat.IsGroup() {
		return nil, Invalid("category_id", "「%s」是类别组，只有子类别可以设置预算", cat.Name)
	}
	return cat, nil
}

// PlanPublishForward 把 from 月的金额复制到同年之后的每个月。
// 只在金额不同时写入，来源为 0 不会新建记录，已有备注保留；目标月份类别不可见则跳过
func PlanPublishForward(snap *Snapshot, tree *Tree, workspaceID uint, categoryID uint, from models.Month, includeSub bool) ([]BudgetWrite, error) {
	if !from.Valid() {
		return nil, Invalid("month", "月份格式错误: %q", from)
	}
	cat, ok := tree.Get(categoryID)
	if !ok {
		return nil, notFound("类别", categoryID)
	}
	targets := []*models.Category{cat}
	if cat.IsGroup() {
		if !includeSub {
			return nil, Invalid("include_subcategories", "「%s」是类别组，需要同时发布其子类别", cat.Name)
		}
		targets = tree.Children(cat.ID)
	}
	return publish(IndexBudgets(snap.Budgets), workspaceID, targets, from), nil
}

// PlanPublishForwardAll 对工作区全部子类别执行 PlanPublishForward
func PlanPublishForwardAll(snap *Snapshot, tree *Tree, workspaceID uint, from models.Month) ([]BudgetWrite, error) {
	if !from.Valid() {
		return nil, Invalid("month", "月份格式错误: %q", from)
	}
	var targets []*models.Category
	for _, c := range tree.Ordered() {
		if !c.IsGroup() {
			targets = append(targets, c)
		}
	}
	return publish(IndexBudgets(snap.Budgets), workspaceID, targets, from), nil
}

func publish(idx BudgetIndex, workspaceID uint, targets []*models.Category, from models.Month) []BudgetWrite {
	var writes []BudgetWrite
	for _, cat := range targets {
		src := idx.Amount(cat.ID, from)
		for m := from.AddMonths(1); m.Year() == from.Year(); m = m.AddMonths(1) {
			if !cat.VisibleIn(m) {
				continue
			}
			existing, ok := idx.Get(cat.ID, m)
			if !ok {
				if src.IsPositive() {
					writes = append(writes, BudgetWrite{Op: BudgetCreate, Budget: models.Budget{
						WorkspaceID: workspaceID, CategoryID: cat.ID, Month: m, Amount: src,
					}})
				}
				continue
			}
			if existing.Amount.Equal(src) {
				continue
			}
			updated := *existing
			updated.Amount = src
			writes = append(writes, change(existing, updated))
		}
	}
	return writes
}

// BudgetsInYear 某年的全部预算
func BudgetsInYear(budgets []models.Budget, year int) []models.Budget {
	var out []models.Budget
	for _, b := range budgets {
		if b.Month.Year() == year {
			out = append(out, b)
		}
	}
	return out
}
