package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"budget/events"
	"budget/service"
	"budget/store"
)

type testEnv struct {
	router *gin.Engine
	mem    *store.Memory
	ledger *service.Ledger
}

func setWorkspaceMiddleware(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("workspaceID", id)
		c.Next()
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mem := store.NewMemory()
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	l := service.NewLedger(mem.Store, events.Nop{}, zap.NewNop(), service.Options{Now: func() time.Time { return now }})

	r := gin.New()
	r.Use(setWorkspaceMiddleware(1))
	cat := NewCategoryHandler(l)
	r.GET("/categories", cat.List)
	r.POST("/categories", cat.Create)
	r.PUT("/categories/:id", cat.Rename)
	r.POST("/categories/:id/move", cat.Move)
	r.POST("/categories/:id/archive", cat.Archive)
	r.POST("/categories/:id/restore", cat.Restore)
	acct := NewAccountHandler(l)
	r.GET("/accounts", acct.List)
	r.POST("/accounts", acct.Create)
	r.PUT("/accounts/:id", acct.Update)
	r.GET("/accounts/:id/balance", acct.Balance)
	r.POST("/accounts/:id/archive", acct.Archive)
	tx := NewTransactionHandler(l)
	r.GET("/transactions", tx.List)
	r.POST("/transactions", tx.Create)
	r.PUT("/transactions/:id", tx.Update)
	r.DELETE("/transactions/:id", tx.Delete)
	b := NewBudgetHandler(l)
	r.GET("/budgets", b.List)
	r.PUT("/budgets", b.Upsert)
	r.POST("/budgets/publish-forward", b.PublishForward)
	r.POST("/budgets/publish-forward-all", b.PublishForwardAll)
	fc := NewForecastHandler(l)
	r.GET("/forecast/:year", fc.Get)
	r.GET("/forecast/:year/export", fc.Export)
	return &testEnv{router: r, mem: mem, ledger: l}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode 解析响应，data 写入 out（可为 nil）
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()
	var raw struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return Response{Code: raw.Code, Message: raw.Message}
}

// seed 工资卡、旅行基金；生活 → 餐饮、旅行储蓄（专用）。返回各自 ID
func (e *testEnv) seed(t *testing.T) (card, savings, life, food, travel uint) {
	t.Helper()
	type idOnly struct {
		ID uint `json:"id"`
	}
	post := func(path, body string) uint {
		w := e.do("POST", path, body)
		require.Equal(t, 200, w.Code, w.Body.String())
		var v idOnly
		decode(t, w, &v)
		return v.ID
	}
	card = post("/accounts", `{"name":"工资卡","account_type":"standard","initial_balance":"1000","initial_balance_date":"2024-01-01"}`)
	savings = post("/accounts", `{"name":"旅行基金","account_type":"savings","initial_balance":"0","initial_balance_date":"2024-01-01"}`)
	life = post("/categories", `{"name":"生活","type":"expense","valid_from":"2024-01"}`)
	food = post("/categories", fmtJSON(`{"name":"餐饮","type":"expense","valid_from":"2024-01","parent_id":%d}`, life))
	travel = post("/categories", fmtJSON(`{"name":"旅行储蓄","type":"expense","valid_from":"2024-01","parent_id":%d,"dedicated_account_id":%d}`, life, savings))
	return
}

var bg = context.Background()

func fmtJSON(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
