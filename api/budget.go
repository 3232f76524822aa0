package api

import (
	"strconv"
	"time"

	"budget/ledger"
	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BudgetHandler 月度预算
type BudgetHandler struct {
	ledger *service.Ledger
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(l *service.Ledger) *BudgetHandler {
	return &BudgetHandler{ledger: l}
}

// UpsertBudgetRequest 设置预算请求；金额为 0 且无备注时删除该月预算
type UpsertBudgetRequest struct {
	CategoryID uint            `json:"category_id" binding:"required" example:"11"`
	Month      models.Month    `json:"month" binding:"required" example:"2024-06"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"200.00"`
	Note       *string         `json:"note" binding:"omitempty,max=255"`
}

// PublishForwardRequest 发布请求
type PublishForwardRequest struct {
	CategoryID           uint         `json:"category_id" binding:"required" example:"10"`
	From                 models.Month `json:"from" binding:"required" example:"2024-01"`
	IncludeSubcategories bool         `json:"include_subcategories"`
}

// PublishForwardAllRequest 全部子类别发布请求
type PublishForwardAllRequest struct {
	From models.Month `json:"from" binding:"required" example:"2024-01"`
}

// PublishResult 发布写入的记录数
type PublishResult struct {
	Written int `json:"written"`
}

// List 某年预算
// @Summary 年度预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param year query int false "年份，默认今年"
// @Success 200 {object} Response{data=[]models.Budget}
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			BadRequest(c, "无效的年份")
			return
		}
		year = v
	}
	rows, err := h.ledger.ListBudgets(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), year)
	if err != nil {
		respondError(c, err, "获取预算失败")
		return
	}
	Success(c, rows)
}

// Upsert 设置某月预算
// @Summary 设置预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpsertBudgetRequest true "预算"
// @Success 200 {object} Response{data=models.Budget} "删除时 data 为空"
// @Failure 400 {object} Response
// @Router /api/v1/budgets [put]
func (h *BudgetHandler) Upsert(c *gin.Context) {
	var req UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	b, err := h.ledger.UpsertBudget(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), ledger.BudgetInput{
		CategoryID: req.CategoryID,
		Month:      req.Month,
		Amount:     req.Amount,
		Note:       req.Note,
	})
	if err != nil {
		respondError(c, err, "设置预算失败")
		return
	}
	if b == nil {
		SuccessWithMessage(c, "预算已清空", nil)
		return
	}
	SuccessWithMessage(c, "保存成功", b)
}

// PublishForward 把某月预算复制到当年之后的月份
// @Summary 向后发布预算
// @Description 类别组需要 include_subcategories=true；可重复执行
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PublishForwardRequest true "来源"
// @Success 200 {object} Response{data=PublishResult}
// @Failure 400 {object} Response
// @Router /api/v1/budgets/publish-forward [post]
func (h *BudgetHandler) PublishForward(c *gin.Context) {
	var req PublishForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	n, err := h.ledger.PublishForward(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), req.CategoryID, req.From, req.IncludeSubcategories)
	if err != nil {
		respondError(c, err, "发布预算失败")
		return
	}
	SuccessWithMessage(c, "发布成功", PublishResult{Written: n})
}

// PublishForwardAll 全部子类别向后发布
// @Summary 全部向后发布预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PublishForwardAllRequest true "来源月份"
// @Success 200 {object} Response{data=PublishResult}
// @Router /api/v1/budgets/publish-forward-all [post]
func (h *BudgetHandler) PublishForwardAll(c *gin.Context) {
	var req PublishForwardAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	n, err := h.ledger.PublishForwardAll(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), req.From)
	if err != nil {
		respondError(c, err, "发布预算失败")
		return
	}
	SuccessWithMessage(c, "发布成功", PublishResult{Written: n})
}
