package service

import (
	"context"

	"budget/ledger"
	"budget/models"
)

// Forecast 某年的余额走势，按配置的口径计算
func (l *Ledger) Forecast(ctx context.Context, workspaceID uint, year int) (*ledger.Forecast, error) {
	snap, err := l.snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return ledger.BuildForecast(ledger.ForecastInput{
		Year:            year,
		Now:             models.MonthOf(l.now()),
		Accounts:        snap.Accounts,
		Transactions:    snap.Transactions,
		Budgets:         snap.Budgets,
		CategoryTypes:   snap.CategoryTypes(),
		CategoryVisible: snap.CategoryVisible,
		Policy:          l.policy,
	})
}
