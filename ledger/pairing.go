package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"budget/models"
)

// 镜像交易备注前缀，编辑时先去掉再重新生成
const (
	DepositNotePrefix    = "存入储蓄: "
	WithdrawalNotePrefix = "储蓄取出: "
)

// Write 交易写入单元：单条交易或专用储蓄交易对，二者必须整体成功或整体失败
type Write interface {
	Legs() []models.Transaction
}

// SingleTransaction 普通交易
type SingleTransaction struct {
	Tx models.Transaction
}

func (w SingleTransaction) Legs() []models.Transaction {
	return []models.Transaction{w.Tx}
}

// TransactionPair 专用储蓄交易对：Primary 在普通账户上计入预算，Mirror 在储蓄账户上不计入预算
type TransactionPair struct {
	Primary models.Transaction
	Mirror  models.Transaction
}

func (w TransactionPair) Legs() []models.Transaction {
	return []models.Transaction{w.Primary, w.Mirror}
}

// NewTransaction 记账输入
type NewTransaction struct {
	Type                 string
	Amount               decimal.Decimal
	Date                 models.Date
	AccountID            uint
	DestinationAccountID *uint
	CategoryID           *uint
	Note                 string
}

// PlanRecord 校验输入并给出写入单元；专用储蓄类别生成交易对（互相引用的 ID 由写入时补齐）
func PlanRecord(snap *Snapshot, tree *Tree, workspaceID uint, in NewTransaction) (Write, error) {
	if in.Amount.IsNegative() {
		return nil, Invalid("amount", "金额不能为负数")
	}
	if in.Date.IsZero() {
		return nil, Invalid("transaction_date", "交易日期不能为空")
	}
	acct, ok := snap.Account(in.AccountID)
	if !ok {
		return nil, notFound("账户", in.AccountID)
	}
	if !acct.IsActive() {
		return nil, Invalid("account_id", "账户「%s」已归档", acct.Name)
	}

	tx := models.Transaction{
		WorkspaceID:     workspaceID,
		Type:            in.Type,
		Amount:          in.Amount,
		TransactionDate: in.Date,
		AccountID:       in.AccountID,
		OnBudget:        true,
		Note:            strings.TrimSpace(in.Note),
	}

	switch in.Type {
	case models.TransactionTypeTransfer:
		if err := checkTransfer(snap, in); err != nil {
			return nil, err
		}
		tx.DestinationAccountID = in.DestinationAccountID
		return SingleTransaction{Tx: tx}, nil
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
	default:
		return nil, Invalid("type", "未知的交易类型: %q", in.Type)
	}

	if in.DestinationAccountID != nil {
		return nil, Invalid("destination_account_id", "只有转账可以指定目标账户")
	}
	if in.CategoryID == nil {
		return nil, Invalid("category_id", "收入和支出必须指定类别")
	}
	cat, err := bookableCategory(tree, *in.CategoryID, in.Type, in.Date.YearMonth())
	if err != nil {
		return nil, err
	}
	tx.CategoryID = &cat.ID

	if !cat.IsDedicated() {
		return SingleTransaction{Tx: tx}, nil
	}
	savings, ok := snap.Account(*cat.DedicatedAccountID)
	if !ok {
		return nil, notFound("账户", *cat.DedicatedAccountID)
	}
	if savings.ID == acct.ID {
		return nil, Invalid("account_id", "「%s」是专用储蓄账户，请在普通账户上记账，系统会自动生成储蓄侧记录", savings.Name)
	}
	if !savings.IsActive() {
		return nil, Invalid("category_id", "类别「%s」关联的储蓄账户「%s」已归档", cat.Name, savings.Name)
	}
	return TransactionPair{Primary: tx, Mirror: mirrorOf(tx, savings.ID)}, nil
}

func checkTransfer(snap *Snapshot, in NewTransaction) error {
	if in.CategoryID != nil {
		return Invalid("category_id", "转账不能指定类别")
	}
	if in.DestinationAccountID == nil {
		return Invalid("destination_account_id", "转账必须指定目标账户")
	}
	if *in.DestinationAccountID == in.AccountID {
		return Invalid("destination_account_id", "转出和转入账户不能相同")
	}
	dest, ok := snap.Account(*in.DestinationAccountID)
	if !ok {
		return notFound("账户", *in.DestinationAccountID)
	}
	if !dest.IsActive() {
		return Invalid("destination_account_id", "账户「%s」已归档", dest.Name)
	}
	return nil
}

// bookableCategory 交易可用的类别：存在、是子类别、方向一致、当月可见
func bookableCategory(tree *Tree, id uint, txType string, month models.Month) (*models.Category, error) {
	cat, ok := tree.Get(id)
	if !ok {
		return nil, notFound("类别", id)
	}
	if cat.IsGroup() {
		return nil, Invalid("category_id", "「%s」是类别组，只有子类别可以记账", cat.Name)
	}
	if string(cat.Type) != txType {
		return nil, Invalid("category_id", "类别「%s」方向为 %s，不能用于 %s 交易", cat.Name, cat.Type, txType)
	}
	if !cat.VisibleIn(month) {
		return nil, Invalid("category_id", "类别「%s」在 %s 不可用", cat.Name, month)
	}
	return cat, nil
}

// mirrorOf 储蓄侧镜像：主交易为支出时储蓄账户收入，主交易为收入时储蓄账户支出
func mirrorOf(primary models.Transaction, savingsID uint) models.Transaction {
	mirror := models.Transaction{
		WorkspaceID:     primary.WorkspaceID,
		Amount:          primary.Amount,
		TransactionDate: primary.TransactionDate,
		AccountID:       savingsID,
		OnBudget:        false,
	}
	if primary.Type == models.TransactionTypeExpense {
		mirror.Type = models.TransactionTypeIncome
	} else {
		mirror.Type = models.TransactionTypeExpense
	}
	mirror.Note = MirrorNote(primary.Type, primary.Note)
	return mirror
}

// MirrorNote 由主交易备注生成镜像备注
func MirrorNote(primaryType, note string) string {
	note = StripMirrorPrefix(note)
	if primaryType == models.TransactionTypeExpense {
		return DepositNotePrefix + note
	}
	return WithdrawalNotePrefix + note
}

// StripMirrorPrefix 去掉镜像前缀（可能被重复添加过）
func StripMirrorPrefix(note string) string {
	note = strings.TrimSpace(note)
	for {
		switch {
		case strings.HasPrefix(note, DepositNotePrefix):
			note = strings.TrimSpace(strings.TrimPrefix(note, DepositNotePrefix))
		case strings.HasPrefix(note, WithdrawalNotePrefix):
			note = strings.TrimSpace(strings.TrimPrefix(note, WithdrawalNotePrefix))
		default:
			return note
		}
	}
}

// TransactionPatch 编辑交易，nil 字段保持不变
type TransactionPatch struct {
	Amount     *decimal.Decimal
	Date       *models.Date
	Note       *string
	CategoryID *uint
}

// PlanUpdate 给出编辑后的记录；交易对返回两条，金额、日期、备注同步到另一侧
func PlanUpdate(snap *Snapshot, tree *Tree, id uint, patch TransactionPatch) (Write, error) {
	cur, ok := snap.Transaction(id)
	if !ok {
		return nil, notFound("交易", id)
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		return nil, Invalid("amount", "金额不能为负数")
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return nil, Invalid("transaction_date", "交易日期不能为空")
	}

	if cur.IsLinked() {
		other, ok := snap.Transaction(*cur.LinkedTransactionID)
		if ok {
			return planPairUpdate(tree, cur, other, patch)
		}
	}

	updated := *cur
	applyCommon(&updated, patch)
	if patch.Note != nil {
		updated.Note = strings.TrimSpace(*patch.Note)
	}
	if updated.Type == models.TransactionTypeTransfer {
		if patch.CategoryID != nil {
			return nil, Invalid("category_id", "转账不能指定类别")
		}
		return SingleTransaction{Tx: updated}, nil
	}
	if patch.CategoryID != nil {
		updated.CategoryID = patch.CategoryID
	}
	if updated.CategoryID != nil && (patch.CategoryID != nil || patch.Date != nil) {
		cat, err := bookableCategory(tree, *updated.CategoryID, updated.Type, updated.TransactionDate.YearMonth())
		if err != nil {
			return nil, err
		}
		if cat.IsDedicated() && !sameID(cur.CategoryID, updated.CategoryID) {
			return nil, Invalid("category_id", "不能把普通交易改为专用储蓄类别「%s」，请删除后重新记账", cat.Name)
		}
	}
	return SingleTransaction{Tx: updated}, nil
}

func planPairUpdate(tree *Tree, cur, other *models.Transaction, patch TransactionPatch) (Write, error) {
	primary, mirror := *cur, *other
	if cur.IsMirror() {
		primary, mirror = *other, *cur
	}
	if patch.CategoryID != nil && !sameID(patch.CategoryID, primary.CategoryID) {
		return nil, Invalid("category_id", "专用储蓄交易不能修改类别，请删除后重新记账")
	}
	applyCommon(&primary, patch)
	applyCommon(&mirror, patch)
	if patch.Note != nil {
		primary.Note = StripMirrorPrefix(*patch.Note)
	}
	mirror.Note = MirrorNote(primary.Type, primary.Note)
	if patch.Date != nil && primary.CategoryID != nil {
		if _, err := bookableCategory(tree, *primary.CategoryID, primary.Type, primary.TransactionDate.YearMonth()); err != nil {
			return nil, err
		}
	}
	return TransactionPair{Primary: primary, Mirror: mirror}, nil
}

func applyCommon(tx *models.Transaction, patch TransactionPatch) {
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Date != nil {
		tx.TransactionDate = *patch.Date
	}
}

// PlanDelete 删除单元：交易对两侧一起删除
func PlanDelete(snap *Snapshot, id uint) (Write, error) {
	cur, ok := snap.Transaction(id)
	if !ok {
		return nil, notFound("交易", id)
	}
	if cur.IsLinked() {
		if other, ok := snap.Transaction(*cur.LinkedTransactionID); ok {
			if cur.IsMirror() {
				return TransactionPair{Primary: *other, Mirror: *cur}, nil
			}
			return TransactionPair{Primary: *cur, Mirror: *other}, nil
		}
	}
	return SingleTransaction{Tx: *cur}, nil
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
