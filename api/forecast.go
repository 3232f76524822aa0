package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"budget/middleware"
	"budget/report"
	"budget/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ForecastHandler 余额预测
type ForecastHandler struct {
	ledger *service.Ledger
}

// NewForecastHandler 创建预测处理器
func NewForecastHandler(l *service.Ledger) *ForecastHandler {
	return &ForecastHandler{ledger: l}
}

func pathYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		BadRequest(c, "无效的年份")
		return 0, false
	}
	return year, true
}

// Get 某年余额走势
// @Summary 余额预测
// @Description 13 个点：期初和 1-12 月，每个点有实际、计划、预测三条线
// @Tags 预测
// @Produce json
// @Security BearerAuth
// @Param year path int true "年份"
// @Success 200 {object} Response{data=ledger.Forecast}
// @Router /api/v1/forecast/{year} [get]
func (h *ForecastHandler) Get(c *gin.Context) {
	year, ok := pathYear(c)
	if !ok {
		return
	}
	fc, err := h.ledger.Forecast(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), year)
	if err != nil {
		respondError(c, err, "计算预测失败")
		return
	}
	Success(c, fc)
}

// Export 导出预测和年度预算为 Excel
// @Summary 导出预测
// @Tags 预测
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param year path int true "年份"
// @Success 200 {file} file "Excel 文件"
// @Router /api/v1/forecast/{year}/export [get]
func (h *ForecastHandler) Export(c *gin.Context) {
	year, ok := pathYear(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ws := middleware.GetCurrentWorkspaceID(c)
	fc, err := h.ledger.Forecast(ctx, ws, year)
	if err != nil {
		respondError(c, err, "计算预测失败")
		return
	}
	cats, err := h.ledger.ListCategories(ctx, ws)
	if err != nil {
		respondError(c, err, "获取类别失败")
		return
	}
	budgets, err := h.ledger.ListBudgets(ctx, ws, year)
	if err != nil {
		respondError(c, err, "获取预算失败")
		return
	}

	buf := new(bytes.Buffer)
	if err := report.Write(buf, fc, cats, budgets); err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=forecast_%d.xlsx", year))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
