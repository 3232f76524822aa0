package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if ws := c.GetHeader("X-Workspace"); ws == "7" {
			c.Set("workspaceID", uint(7))
		}
		c.Next()
	})
	router.Use(RateLimit(2, 200*time.Millisecond))
	router.POST("/budgets", func(c *gin.Context) { c.String(200, "ok") })
	router.GET("/budgets", func(c *gin.Context) { c.String(200, "ok") })

	do := func(method, ip, ws string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/budgets", nil)
		req.RemoteAddr = ip + ":12345"
		if ws != "" {
			req.Header.Set("X-Workspace", ws)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, 200, do("POST", "192.168.1.1", "").Code)
	assert.Equal(t, 200, do("POST", "192.168.1.1", "").Code)
	w := do("POST", "192.168.1.1", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "频繁")

	// 读请求不计数
	assert.Equal(t, 200, do("GET", "192.168.1.1", "").Code)

	// 同一 IP 的已认证请求按工作区计数
	assert.Equal(t, 200, do("POST", "192.168.1.1", "7").Code)
	assert.Equal(t, 200, do("POST", "192.168.1.2", "7").Code)
	assert.Equal(t, http.StatusTooManyRequests, do("POST", "192.168.1.3", "7").Code)

	// 窗口过后恢复
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 200, do("POST", "192.168.1.1", "").Code)
}
