package ledger

import (
	"sort"
	"strings"

	"budget/models"
)

// Tree 类别树，每次操作构建一次：组 → 有序子类别，避免反复线性扫描
type Tree struct {
	byID     map[uint]*models.Category
	children map[uint][]*models.Category
	groups   map[models.CategoryType][]*models.Category
}

// NewTree 基于快照中的类别构建类别树，节点指向 categories 的元素
func NewTree(categories []models.Category) *Tree {
	t := &Tree{
		byID:     make(map[uint]*models.Category, len(categories)),
		children: make(map[uint][]*models.Category),
		groups:   make(map[models.CategoryType][]*models.Category),
	}
	for i := range categories {
		c := &categories[i]
		t.byID[c.ID] = c
		if c.ParentID == nil {
			t.groups[c.Type] = append(t.groups[c.Type], c)
		} else {
			t.children[*c.ParentID] = append(t.children[*c.ParentID], c)
		}
	}
	for _, list := range t.children {
		sortByOrder(list)
	}
	for _, list := range t.groups {
		sortByOrder(list)
	}
	return t
}

func sortByOrder(list []*models.Category) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].SortOrder != list[j].SortOrder {
			return list[i].SortOrder < list[j].SortOrder
		}
		return list[i].ID < list[j].ID
	})
}

// Get 按 ID 查找
func (t *Tree) Get(id uint) (*models.Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Children 类别组的子类别（按排序）
func (t *Tree) Children(id uint) []*models.Category {
	return t.children[id]
}

// Siblings 与 c 同父、同方向的全部类别（含 c 自身），按排序
func (t *Tree) Siblings(c *models.Category) []*models.Category {
	return t.siblingsOf(c.ParentID, c.Type)
}

func (t *Tree) siblingsOf(parentID *uint, typ models.CategoryType) []*models.Category {
	if parentID == nil {
		return t.groups[typ]
	}
	var out []*models.Category
	for _, c := range t.children[*parentID] {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// Family 类别自身，若为类别组则加上全部子类别
func (t *Tree) Family(id uint) []*models.Category {
	c, ok := t.byID[id]
	if !ok {
		return nil
	}
	family := []*models.Category{c}
	if c.IsGroup() {
		family = append(family, t.children[c.ID]...)
	}
	return family
}

// Ordered 树序：收入在前、支出在后；每个组后面紧跟其子类别
func (t *Tree) Ordered() []*models.Category {
	var out []*models.Category
	for _, typ := range []models.CategoryType{models.CategoryTypeIncome, models.CategoryTypeExpense} {
		for _, g := range t.groups[typ] {
			out = append(out, g)
			out = append(out, t.children[g.ID]...)
		}
	}
	return out
}

// NextOrder 同级最大排序 + 1
func (t *Tree) NextOrder(parentID *uint, typ models.CategoryType) int {
	max := 0
	for _, c := range t.siblingsOf(parentID, typ) {
		if c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max + 1
}

// NewCategory 新建类别的输入
type NewCategory struct {
	Name               string
	Type               models.CategoryType
	ParentID           *uint
	ValidFrom          models.Month
	DedicatedAccountID *uint
}

// PlanCreateCategory 校验输入并返回待写入的类别（排序已计算）
func PlanCreateCategory(snap *Snapshot, tree *Tree, workspaceID uint, in NewCategory) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, Invalid("name", "名称不能为空")
	}
	if !in.Type.Valid() {
		return nil, Invalid("type", "未知的类别方向: %q", in.Type)
	}
	if !in.ValidFrom.Valid() {
		return nil, Invalid("valid_from", "生效月份格式错误: %q", in.ValidFrom)
	}
	if in.ParentID != nil {
		parent, ok := tree.Get(*in.ParentID)
		if !ok {
			return nil, notFound("父类别", *in.ParentID)
		}
		if !parent.IsGroup() {
			return nil, Invalid("parent_id", "「%s」已是子类别，类别最多两级", parent.Name)
		}
		if parent.Type != in.Type {
			return nil, Invalid("parent_id", "父类别「%s」方向为 %s，与 %s 不一致", parent.Name, parent.Type, in.Type)
		}
		if !parent.IsActive() {
			return nil, Invalid("parent_id", "父类别「%s」已归档", parent.Name)
		}
	}
	c := &models.Category{
		WorkspaceID:        workspaceID,
		Name:               name,
		Type:               in.Type,
		ParentID:           in.ParentID,
		SortOrder:          tree.NextOrder(in.ParentID, in.Type),
		ValidFrom:          in.ValidFrom,
		Status:             models.StatusActive,
		DedicatedAccountID: in.DedicatedAccountID,
	}
	if err := checkDedication(snap, tree, c); err != nil {
		return nil, err
	}
	return c, nil
}

// checkDedication 专用储蓄账户只能挂在子类别上，且每个账户最多一个收入面、一个支出面
func checkDedication(snap *Snapshot, tree *Tree, c *models.Category) error {
	if c.DedicatedAccountID == nil {
		return nil
	}
	if c.IsGroup() {
		return Invalid("dedicated_account_id", "类别组不能关联专用储蓄账户")
	}
	acct, ok := snap.Account(*c.DedicatedAccountID)
	if !ok {
		return notFound("账户", *c.DedicatedAccountID)
	}
	if !acct.IsSavings() {
		return Invalid("dedicated_account_id", "账户「%s」不是储蓄账户", acct.Name)
	}
	if !acct.IsActive() {
		return Invalid("dedicated_account_id", "账户「%s」已归档", acct.Name)
	}
	for _, other := range tree.byID {
		if other.ID == c.ID || !other.IsActive() || other.DedicatedAccountID == nil {
			continue
		}
		if *other.DedicatedAccountID == acct.ID && other.Type == c.Type {
			return Conflict("账户「%s」已关联%s类别「%s」", acct.Name, typeLabel(c.Type), other.Name)
		}
	}
	return nil
}

func typeLabel(t models.CategoryType) string {
	if t == models.CategoryTypeIncome {
		return "收入"
	}
	return "支出"
}

// Direction 移动方向
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// OrderChange 一条排序变更
type OrderChange struct {
	ID        uint
	SortOrder int
}

// PlanMove 与相邻同级交换排序；已在首/尾时返回 nil（无操作）
func PlanMove(tree *Tree, id uint, dir Direction) ([]OrderChange, error) {
	c, ok := tree.Get(id)
	if !ok {
		return nil, notFound("类别", id)
	}
	if dir != Up && dir != Down {
		return nil, Invalid("direction", "移动方向只能是 up 或 down")
	}
	siblings := tree.Siblings(c)
	idx := -1
	for i, s := range siblings {
		if s.ID == c.ID {
			idx = i
			break
		}
	}
	target := idx - 1
	if dir == Down {
		target = idx + 1
	}
	if idx < 0 || target < 0 || target >= len(siblings) {
		return nil, nil
	}
	other := siblings[target]
	if other.SortOrder == c.SortOrder {
		return nil, Conflict("类别「%s」与「%s」排序重复: %d", c.Name, other.Name, c.SortOrder)
	}
	return []OrderChange{
		{ID: c.ID, SortOrder: other.SortOrder},
		{ID: other.ID, SortOrder: c.SortOrder},
	}, nil
}

// ListVisible 在 month 可见的类别，按树序。历史月份仍能看到之后归档的类别
func ListVisible(categories []models.Category, month models.Month) []models.Category {
	tree := NewTree(categories)
	var out []models.Category
	for _, c := range tree.Ordered() {
		if c.VisibleIn(month) {
			out = append(out, *c)
		}
	}
	return out
}

// Ordered 全部类别，按树序
func Ordered(categories []models.Category) []models.Category {
	tree := NewTree(categories)
	ordered := tree.Ordered()
	out := make([]models.Category, 0, len(ordered))
	for _, c := range ordered {
		out = append(out, *c)
	}
	return out
}

// PlanRename 校验新名称
func PlanRename(tree *Tree, id uint, name string) (*models.Category, error) {
	c, ok := tree.Get(id)
	if !ok {
		return nil, notFound("类别", id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Invalid("name", "名称不能为空")
	}
	updated := *c
	updated.Name = name
	return &updated, nil
}

// PlanRestore 取消归档：类别组连同子类别一起恢复；父组仍归档时不能单独恢复子类别
func PlanRestore(tree *Tree, id uint) ([]models.Category, error) {
	c, ok := tree.Get(id)
	if !ok {
		return nil, notFound("类别", id)
	}
	if !c.IsGroup() {
		parent, ok := tree.Get(*c.ParentID)
		if ok && !parent.IsActive() {
			return nil, Invalid("parent_id", "父类别「%s」已归档，请先恢复父类别", parent.Name)
		}
	}
	var out []models.Category
	for _, member := range tree.Family(id) {
		if member.IsActive() && member.ArchivedFrom == nil {
			continue
		}
		restored := *member
		restored.Status = models.StatusActive
		restored.ArchivedFrom = nil
		out = append(out, restored)
	}
	return out, nil
}
