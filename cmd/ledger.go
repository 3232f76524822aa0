package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"budget/config"
	"budget/database"
	"budget/events"
	"budget/ledger"
	"budget/logger"
	"budget/service"
	"budget/store"
)

// app 命令共用的依赖
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	ledger *service.Ledger
	close  func()
}

// openApp 依次初始化日志、存储、事件输出和账本服务
func openApp(cfg *config.Config) (*app, error) {
	zl, err := logger.Init(cfg.Log)
	if err != nil {
		return nil, err
	}
	decimal.MarshalJSONWithoutQuotes = true

	if err := database.Init(cfg); err != nil {
		return nil, fmt.Errorf("数据库初始化失败: %w", err)
	}
	var st *store.Store
	if database.DB == nil {
		st = store.NewMemory().Store
	} else {
		st = store.NewGorm(database.DB)
	}

	closers := []func(){func() { _ = zl.Sync() }}
	var sink events.Sink
	switch cfg.Events.Sink {
	case "db":
		if database.DB == nil {
			zl.Warn("内存存储不支持 db 事件输出，改为写日志")
			sink = events.NewLogSink(zl)
		} else {
			sink = events.NewDBSink(database.DB, zl)
		}
	case "amqp":
		s, err := events.NewAMQPSink(cfg.Events.AMQPURL, cfg.Events.Exchange, cfg.Events.RoutingKey, zl)
		if err != nil {
			return nil, fmt.Errorf("连接消息队列失败: %w", err)
		}
		closers = append(closers, func() {
			if err := s.Close(); err != nil {
				zl.Warn("关闭消息队列连接失败", zap.Error(err))
			}
		})
		// 同时记日志，便于排查未送达的事件
		sink = events.Multi{s, events.NewLogSink(zl)}
	case "log":
		sink = events.NewLogSink(zl)
	default:
		sink = events.Nop{}
	}

	l := service.NewLedger(st, sink, zl, service.Options{
		Epsilon:         ledger.ParseEpsilon(cfg.Ledger.BalanceEpsilon),
		Policy:          ledger.ElapsedPolicy(cfg.Forecast.ElapsedPolicy),
		DefaultCurrency: cfg.Ledger.DefaultCurrency,
	})
	return &app{
		cfg:    cfg,
		log:    zl,
		ledger: l,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
