package models

import (
	"time"
)

// CategoryType 类别方向
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid 是否为已知方向
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

const (
	// StatusActive 正常
	StatusActive = "active"
	// StatusArchived 已归档：保留历史，不再用于新数据
	StatusArchived = "archived"
)

// Category 收支类别，两级结构：类别组（ParentID 为空）→ 子类别
// 只有子类别可以挂预算和交易
type Category struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	WorkspaceID uint         `json:"workspace_id" gorm:"index;not null"`
	Name        string       `json:"name" gorm:"size:100;not null"`
	Type        CategoryType `json:"type" gorm:"size:10;not null;index"`
	ParentID    *uint        `json:"parent_id" gorm:"index"`
	SortOrder   int          `json:"order" gorm:"not null;default:0"` // 同级（ParentID + Type）内唯一
	ValidFrom   Month        `json:"valid_from" gorm:"size:7;not null"`
	// ArchivedFrom 不含：该月起不再可见
	ArchivedFrom *Month `json:"archived_from" gorm:"size:7"`
	Status       string `json:"status" gorm:"size:20;not null;default:active;index"`
	// DedicatedAccountID 专用储蓄账户，非空表示该子类别是储蓄账户的存入/取出面
	DedicatedAccountID *uint     `json:"dedicated_account_id" gorm:"index"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// IsGroup 是否为类别组
func (c *Category) IsGroup() bool {
	return c.ParentID == nil
}

// IsDedicated 是否为专用储蓄类别
func (c *Category) IsDedicated() bool {
	return c.DedicatedAccountID != nil
}

func (c *Category) IsActive() bool {
	return c.Status != StatusArchived
}

// VisibleIn validFrom <= m 且 (archivedFrom 为空 或 m < archivedFrom)
func (c *Category) VisibleIn(m Month) bool {
	if m.Before(c.ValidFrom) {
		return false
	}
	return c.ArchivedFrom == nil || m.Before(*c.ArchivedFrom)
}
