package service

import (
	"context"

	"budget/events"
	"budget/ledger"
	"budget/models"
)

// CreateCategory 新建类别，排序排在同级最后
func (l *Ledger) CreateCategory(ctx context.Context, workspaceID uint, in ledger.NewCategory) (*models.Category, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	c, err := ledger.PlanCreateCategory(snap, ledger.NewTree(snap.Categories), workspaceID, in)
	if err != nil {
		return nil, err
	}
	if err := l.store.Categories.Create(ctx, c); err != nil {
		return nil, storeErr("创建类别", err)
	}
	l.emit(ctx, workspaceID, events.CategoryCreated, categoryDetails(c))
	return c, nil
}

// RenameCategory 重命名
func (l *Ledger) RenameCategory(ctx context.Context, workspaceID, id uint, name string) (*models.Category, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	c, err := ledger.PlanRename(ledger.NewTree(snap.Categories), id, name)
	if err != nil {
		return nil, err
	}
	if err := l.store.Categories.Update(ctx, c); err != nil {
		return nil, storeErr("更新类别", err)
	}
	l.emit(ctx, workspaceID, events.CategoryUpdated, categoryDetails(c))
	return c, nil
}

// MoveCategory 与相邻同级交换排序，已在首/尾时不做任何事
func (l *Ledger) MoveCategory(ctx context.Context, workspaceID, id uint, dir ledger.Direction) error {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return err
	}
	tree := ledger.NewTree(snap.Categories)
	changes, err := ledger.PlanMove(tree, id, dir)
	if err != nil || len(changes) == 0 {
		return err
	}

	var u undo
	var moved []*models.Category
	for _, ch := range changes {
		cur, _ := tree.Get(ch.ID)
		original := *cur
		updated := *cur
		updated.SortOrder = ch.SortOrder
		if err := l.store.Categories.Update(ctx, &updated); err != nil {
			return l.rollback(ctx, &u, "调整类别顺序", err)
		}
		u.push(ref("category", original.ID), func(ctx context.Context) error {
			return l.store.Categories.Update(ctx, &original)
		})
		moved = append(moved, &updated)
	}
	for _, c := range moved {
		l.emit(ctx, workspaceID, events.CategoryUpdated, categoryDetails(c))
	}
	return nil
}

// ListCategories 全部类别，按树序
func (l *Ledger) ListCategories(ctx context.Context, workspaceID uint) ([]models.Category, error) {
	cats, err := l.store.Categories.List(ctx, workspaceID)
	if err != nil {
		return nil, storeErr("读取类别", err)
	}
	return ledger.Ordered(cats), nil
}

// ListVisibleCategories 某月可见的类别
func (l *Ledger) ListVisibleCategories(ctx context.Context, workspaceID uint, month models.Month) ([]models.Category, error) {
	if !month.Valid() {
		return nil, ledger.Invalid("month", "月份格式错误: %q", month)
	}
	cats, err := l.store.Categories.List(ctx, workspaceID)
	if err != nil {
		return nil, storeErr("读取类别", err)
	}
	return ledger.ListVisible(cats, month), nil
}

// RestoreCategory 取消归档
func (l *Ledger) RestoreCategory(ctx context.Context, workspaceID, id uint) ([]models.Category, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	tree := ledger.NewTree(snap.Categories)
	restored, err := ledger.PlanRestore(tree, id)
	if err != nil {
		return nil, err
	}

	var u undo
	for i := range restored {
		c := &restored[i]
		cur, _ := tree.Get(c.ID)
		original := *cur
		if err := l.store.Categories.Update(ctx, c); err != nil {
			return nil, l.rollback(ctx, &u, "恢复类别", err)
		}
		u.push(ref("category", original.ID), func(ctx context.Context) error {
			return l.store.Categories.Update(ctx, &original)
		})
	}
	for i := range restored {
		l.emit(ctx, workspaceID, events.CategoryUpdated, categoryDetails(&restored[i]))
	}
	return restored, nil
}

var defaultCategories = []struct {
	group string
	typ   models.CategoryType
	subs  []string
}{
	{"工资", models.CategoryTypeIncome, []string{"月薪", "奖金"}},
	{"其他收入", models.CategoryTypeIncome, []string{"理财", "兼职", "其他"}},
	{"生活", models.CategoryTypeExpense, []string{"餐饮", "交通", "购物"}},
	{"居住", models.CategoryTypeExpense, []string{"房租", "水电"}},
	{"休闲", models.CategoryTypeExpense, []string{"娱乐", "旅行"}},
	{"其他支出", models.CategoryTypeExpense, []string{"医疗", "教育", "其他"}},
}

// SeedDefaults 工作区没有任何类别时写入默认类别，返回写入的数量
func (l *Ledger) SeedDefaults(ctx context.Context, workspaceID uint, validFrom models.Month) (int, error) {
	existing, err := l.store.Categories.List(ctx, workspaceID)
	if err != nil {
		return 0, storeErr("读取类别", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	n := 0
	for _, g := range defaultCategories {
		group, err := l.CreateCategory(ctx, workspaceID, ledger.NewCategory{Name: g.group, Type: g.typ, ValidFrom: validFrom})
		if err != nil {
			return n, err
		}
		n++
		for _, name := range g.subs {
			if _, err := l.CreateCategory(ctx, workspaceID, ledger.NewCategory{
				Name: name, Type: g.typ, ParentID: &group.ID, ValidFrom: validFrom,
			}); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func categoryDetails(c *models.Category) map[string]interface{} {
	d := map[string]interface{}{
		"id":         c.ID,
		"name":       c.Name,
		"type":       c.Type,
		"order":      c.SortOrder,
		"valid_from": c.ValidFrom,
		"status":     c.Status,
	}
	if c.ParentID != nil {
		d["parent_id"] = *c.ParentID
	}
	if c.ArchivedFrom != nil {
		d["archived_from"] = *c.ArchivedFrom
	}
	if c.DedicatedAccountID != nil {
		d["dedicated_account_id"] = *c.DedicatedAccountID
	}
	return d
}
