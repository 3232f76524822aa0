package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"budget/models"
)

// DBSink 写入 event_logs 表
type DBSink struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewDBSink(db *gorm.DB, log *zap.Logger) *DBSink {
	return &DBSink{db: db, log: log}
}

func (s *DBSink) Emit(ctx context.Context, f Fact) {
	details, err := json.Marshal(f.Details)
	if err != nil {
		s.log.Warn("事件序列化失败", zap.String("type", string(f.Type)), zap.Error(err))
		return
	}
	row := models.EventLog{
		EventID:     f.EventID,
		WorkspaceID: f.Workspace,
		Type:        string(f.Type),
		Details:     string(details),
		CreatedAt:   f.At,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Warn("写入事件日志失败",
			zap.String("event_id", f.EventID),
			zap.String("type", string(f.Type)),
			zap.Error(err))
	}
}
