package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/models"
)

func names(cats []models.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.Name)
	}
	return out
}

func TestTree_Ordered(t *testing.T) {
	snap := sampleSnapshot()
	assert.Equal(t,
		[]string{"工资", "月薪", "旅行取出", "生活", "餐饮", "交通", "旅行储蓄"},
		names(Ordered(snap.Categories)))
}

func TestPlanCreateCategory(t *testing.T) {
	snap := sampleSnapshot()
	tree := NewTree(snap.Categories)

	c, err := PlanCreateCategory(snap, tree, 1, NewCategory{
		Name: " 购物 ", Type: models.CategoryTypeExpense, ParentID: uintPtr(10), ValidFrom: models.MustMonth("2024-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "购物", c.Name)
	assert.Equal(t, 4, c.SortOrder)
	assert.Equal(t, models.StatusActive, c.Status)

	// 第一个组
	g, err := PlanCreateCategory(snap, NewTree(nil), 1, NewCategory{
		Name: "投资", Type: models.CategoryTypeIncome, ValidFrom: models.MustMonth("2024-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, g.SortOrder)
}

func TestPlanCreateCategory_Invalid(t *testing.T) {
	snap := sampleSnapshot()
	tree := NewTree(snap.Categories)
	valid := models.MustMonth("2024-01")

	tests := []struct {
		name string
		in   NewCategory
	}{
		{"空名称", NewCategory{Name: " ", Type: models.CategoryTypeExpense, ValidFrom: valid}},
		{"未知方向", NewCategory{Name: "x", Type: "transfer", ValidFrom: valid}},
		{"月份错误", NewCategory{Name: "x", Type: models.CategoryTypeExpense, ValidFrom: "2024/01"}},
		{"父类别方向不同", NewCategory{Name: "x", Type: models.CategoryTypeIncome, ParentID: uintPtr(10), ValidFrom: valid}},
		{"三级", NewCategory{Name: "x", Type: models.CategoryTypeExpense, ParentID: uintPtr(11), ValidFrom: valid}},
		{"组不能专用", NewCategory{Name: "x", Type: models.CategoryTypeExpense, DedicatedAccountID: uintPtr(2), ValidFrom: valid}},
		{"非储蓄账户", NewCategory{Name: "x", Type: models.CategoryTypeExpense, ParentID: uintPtr(10), DedicatedAccountID: uintPtr(1), ValidFrom: valid}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanCreateCategory(snap, tree, 1, tt.in)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestPlanCreateCategory_ArchivedParent(t *testing.T) {
	snap := sampleSnapshot()
	snap.Categories[0].Status = models.StatusArchived
	_, err := PlanCreateCategory(snap, NewTree(snap.Categories), 1, NewCategory{
		Name: "x", Type: models.CategoryTypeExpense, ParentID: uintPtr(10), ValidFrom: models.MustMonth("2024-01"),
	})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestPlanCreateCategory_NotFound(t *testing.T) {
	snap := sampleSnapshot()
	_, err := PlanCreateCategory(snap, NewTree(snap.Categories), 1, NewCategory{
		Name: "x", Type: models.CategoryTypeExpense, ParentID: uintPtr(99), ValidFrom: models.MustMonth("2024-01"),
	})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestPlanCreateCategory_DedicatedFaceTaken(t *testing.T) {
	snap := sampleSnapshot()
	_, err := PlanCreateCategory(snap, NewTree(snap.Categories), 1, NewCategory{
		Name: "再存一点", Type: models.CategoryTypeExpense, ParentID: uintPtr(10),
		DedicatedAccountID: uintPtr(2), ValidFrom: models.MustMonth("2024-01"),
	})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "旅行储蓄")
}

func applyMoves(cats []models.Category, changes []OrderChange) {
	for _, ch := range changes {
		for i := range cats {
			if cats[i].ID == ch.ID {
				cats[i].SortOrder = ch.SortOrder
			}
		}
	}
}

func TestPlanMove_UpThenDownRestoresOrder(t *testing.T) {
	snap := sampleSnapshot()
	before := names(Ordered(snap.Categories))

	up, err := PlanMove(NewTree(snap.Categories), 12, Up)
	require.NoError(t, err)
	require.Len(t, up, 2)
	applyMoves(snap.Categories, up)
	assert.Equal(t, []string{"工资", "月薪", "旅行取出", "生活", "交通", "餐饮", "旅行储蓄"}, names(Ordered(snap.Categories)))

	down, err := PlanMove(NewTree(snap.Categories), 12, Down)
	require.NoError(t, err)
	applyMoves(snap.Categories, down)
	assert.Equal(t, before, names(Ordered(snap.Categories)))
}

func TestPlanMove_Ends(t *testing.T) {
	snap := sampleSnapshot()
	tree := NewTree(snap.Categories)

	changes, err := PlanMove(tree, 11, Up)
	require.NoError(t, err)
	assert.Nil(t, changes)

	changes, err = PlanMove(tree, 13, Down)
	require.NoError(t, err)
	assert.Nil(t, changes)

	// 组之间同样按方向区分
	changes, err = PlanMove(tree, 10, Up)
	require.NoError(t, err)
	assert.Nil(t, changes)
}

func TestPlanMove_DuplicateOrder(t *testing.T) {
	snap := sampleSnapshot()
	snap.Categories[2].SortOrder = 1 // 交通与餐饮重复
	_, err := PlanMove(NewTree(snap.Categories), 12, Up)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)
}

func TestListVisible(t *testing.T) {
	snap := sampleSnapshot()
	snap.Categories[2].ArchivedFrom = monthPtr("2024-07")
	snap.Categories[2].Status = models.StatusArchived
	snap.Categories[1].ValidFrom = models.MustMonth("2024-03")

	assert.Equal(t, []string{"工资", "月薪", "旅行取出", "生活", "交通", "旅行储蓄"},
		names(ListVisible(snap.Categories, models.MustMonth("2024-02"))))
	assert.Equal(t, []string{"工资", "月薪", "旅行取出", "生活", "餐饮", "交通", "旅行储蓄"},
		names(ListVisible(snap.Categories, models.MustMonth("2024-06"))))
	assert.Equal(t, []string{"工资", "月薪", "旅行取出", "生活", "餐饮", "旅行储蓄"},
		names(ListVisible(snap.Categories, models.MustMonth("2024-07"))))
}

func TestPlanRestore(t *testing.T) {
	snap := sampleSnapshot()
	for i := range snap.Categories[:4] {
		snap.Categories[i].Status = models.StatusArchived
		snap.Categories[i].ArchivedFrom = monthPtr("2024-05")
	}
	tree := NewTree(snap.Categories)

	_, err := PlanRestore(tree, 11)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	restored, err := PlanRestore(tree, 10)
	require.NoError(t, err)
	assert.Len(t, restored, 4)
	for _, c := range restored {
		assert.Equal(t, models.StatusActive, c.Status)
		assert.Nil(t, c.ArchivedFrom)
	}
}

func TestPlanRename(t *testing.T) {
	snap := sampleSnapshot()
	tree := NewTree(snap.Categories)

	c, err := PlanRename(tree, 11, "外卖")
	require.NoError(t, err)
	assert.Equal(t, "外卖", c.Name)
	assert.Equal(t, "餐饮", snap.Categories[1].Name)

	_, err = PlanRename(tree, 11, "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
