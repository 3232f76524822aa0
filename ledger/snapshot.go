package ledger

import (
	"budget/models"
)

// Snapshot 一次操作读取到的工作区数据。操作只基于快照计算，写入由调用方执行
type Snapshot struct {
	Categories   []models.Category
	Accounts     []models.Account
	Transactions []models.Transaction
	Budgets      []models.Budget
}

// Account 按 ID 查找账户
func (s *Snapshot) Account(id uint) (*models.Account, bool) {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return &s.Accounts[i], true
		}
	}
	return nil, false
}

// Transaction 按 ID 查找交易
func (s *Snapshot) Transaction(id uint) (*models.Transaction, bool) {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return &s.Transactions[i], true
		}
	}
	return nil, false
}

// CategoryTypes 类别 ID → 方向
func (s *Snapshot) CategoryTypes() map[uint]models.CategoryType {
	types := make(map[uint]models.CategoryType, len(s.Categories))
	for _, c := range s.Categories {
		types[c.ID] = c.Type
	}
	return types
}

// CategoryVisible 类别在 m 月是否可见，不存在的类别视为不可见
func (s *Snapshot) CategoryVisible(id uint, m models.Month) bool {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return s.Categories[i].VisibleIn(m)
		}
	}
	return false
}
