package api

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"budget/ledger"
	"budget/models"
	"budget/report"
)

func TestBudgetHandler(t *testing.T) {
	e := newTestEnv(t)
	_, _, life, food, _ := e.seed(t)

	w := e.do("PUT", "/budgets", fmt.Sprintf(`{"category_id":%d,"month":"2024-01","amount":"200"}`, food))
	require.Equal(t, 200, w.Code, w.Body.String())
	var b models.Budget
	decode(t, w, &b)
	assert.Equal(t, "200", b.Amount.String())

	assert.Equal(t, 400, e.do("PUT", "/budgets", fmt.Sprintf(`{"category_id":%d,"month":"2024-01","amount":"200"}`, life)).Code)
	assert.Equal(t, 400, e.do("POST", "/budgets/publish-forward", fmt.Sprintf(`{"category_id":%d,"from":"2024-01"}`, life)).Code)

	w = e.do("POST", "/budgets/publish-forward", fmt.Sprintf(`{"category_id":%d,"from":"2024-01","include_subcategories":true}`, life))
	require.Equal(t, 200, w.Code, w.Body.String())
	var res PublishResult
	decode(t, w, &res)
	assert.Equal(t, 11, res.Written)

	w = e.do("POST", "/budgets/publish-forward-all", `{"from":"2024-01"}`)
	require.Equal(t, 200, w.Code)
	decode(t, w, &res)
	assert.Zero(t, res.Written)

	var rows []models.Budget
	decode(t, e.do("GET", "/budgets?year=2024", ""), &rows)
	assert.Len(t, rows, 12)

	w = e.do("PUT", "/budgets", fmt.Sprintf(`{"category_id":%d,"month":"2024-05","amount":"0"}`, food))
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "预算已清空", decode(t, w, nil).Message)

	assert.Equal(t, 400, e.do("GET", "/budgets?year=abc", "").Code)
}

func TestForecastHandler(t *testing.T) {
	e := newTestEnv(t)
	_, _, _, food, _ := e.seed(t)
	require.Equal(t, 200, e.do("PUT", "/budgets", fmt.Sprintf(`{"category_id":%d,"month":"2024-07","amount":"200"}`, food)).Code)

	w := e.do("GET", "/forecast/2024", "")
	require.Equal(t, 200, w.Code, w.Body.String())
	var fc ledger.Forecast
	decode(t, w, &fc)
	require.Len(t, fc.Points, 13)
	assert.Equal(t, "期初", fc.Points[0].Label)
	require.NotNil(t, fc.Points[5].Actual)
	assert.Equal(t, "1000", fc.Points[5].Actual.String())
	assert.Nil(t, fc.Points[6].Actual)
	assert.Equal(t, "800", fc.Points[12].Forecast.String())

	assert.Equal(t, 400, e.do("GET", "/forecast/abc", "").Code)

	w = e.do("GET", "/forecast/2024/export", "")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "forecast_2024.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{report.ForecastSheet, report.BudgetSheet}, f.GetSheetList())
}
