package events

import (
	"context"

	"go.uber.org/zap"
)

// LogSink 把事件写到日志
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(_ context.Context, f Fact) {
	s.log.Info("event",
		zap.String("event_id", f.EventID),
		zap.Uint("workspace", f.Workspace),
		zap.String("type", string(f.Type)),
		zap.Any("details", f.Details))
}
