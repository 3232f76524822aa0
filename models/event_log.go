package models

import (
	"time"
)

// EventLog 变更事件（只追加），由事件 sink 写入，核心逻辑不回读
type EventLog struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	EventID     string    `json:"event_id" gorm:"size:36;uniqueIndex;not null"`
	WorkspaceID uint      `json:"workspace_id" gorm:"index;not null"`
	Type        string    `json:"type" gorm:"size:50;not null;index"`
	Details     string    `json:"details" gorm:"type:text"` // JSON
	CreatedAt   time.Time `json:"created_at"`
}

func (EventLog) TableName() string {
	return "event_logs"
}
