package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"budget/ledger"
	"budget/middleware"
	"budget/models"
)

// ErrorBody 业务错误的附加信息
type ErrorBody struct {
	Field     string `json:"field,omitempty"`
	AccountID uint   `json:"account_id,omitempty"`
	Balance   string `json:"balance,omitempty"`
	Partial   bool   `json:"partial,omitempty"`
}

// respondError 按错误类型选择状态码：输入错误 400、不存在 404、冲突和余额不为 0 为 409，
// 其余（存储失败等）500 且在 release 模式下隐藏细节
func respondError(c *gin.Context, err error, fallback string) {
	var (
		ve *ledger.ValidationError
		nf *ledger.NotFoundError
		ce *ledger.ConflictError
		nz *ledger.NonZeroBalanceError
		se *ledger.StoreError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: ve.Error(), Data: ErrorBody{Field: ve.Field}})
	case errors.As(err, &nf):
		Error(c, http.StatusNotFound, nf.Error())
	case errors.As(err, &ce):
		Error(c, http.StatusConflict, ce.Error())
	case errors.As(err, &nz):
		c.JSON(http.StatusConflict, Response{Code: http.StatusConflict, Message: nz.Error(),
			Data: ErrorBody{AccountID: nz.AccountID, Balance: nz.Balance.StringFixed(2)}})
	case errors.As(err, &se):
		zap.L().Error(fallback, zap.Uint("workspace", middleware.GetCurrentWorkspaceID(c)),
			zap.Bool("partial", se.Partial), zap.Strings("orphans", se.Orphans), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError,
			Message: SafeErrorMessage(err, fallback), Data: ErrorBody{Partial: se.Partial}})
	default:
		zap.L().Error(fallback, zap.Error(err))
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}

// pathID 解析路径中的 :id
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "无效的 ID")
		return 0, false
	}
	return uint(id), true
}

// queryUint 可选的正整数查询参数
func queryUint(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		BadRequest(c, "无效的参数: "+key)
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// queryMonth 可选的 YYYY-MM 查询参数
func queryMonth(c *gin.Context, key string) (*models.Month, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	m, err := models.ParseMonth(raw)
	if err != nil {
		BadRequest(c, err.Error())
		return nil, false
	}
	return &m, true
}

// queryDate 可选的 YYYY-MM-DD 查询参数
func queryDate(c *gin.Context, key string) (*models.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		BadRequest(c, err.Error())
		return nil, false
	}
	return &d, true
}
