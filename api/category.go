package api

import (
	"budget/ledger"
	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 类别树
type CategoryHandler struct {
	ledger *service.Ledger
}

// NewCategoryHandler 创建类别处理器
func NewCategoryHandler(l *service.Ledger) *CategoryHandler {
	return &CategoryHandler{ledger: l}
}

// CreateCategoryRequest 新建类别请求
type CreateCategoryRequest struct {
	Name               string              `json:"name" binding:"required,max=100" example:"餐饮"`
	Type               models.CategoryType `json:"type" binding:"required,oneof=income expense" example:"expense"`
	ParentID           *uint               `json:"parent_id" example:"1"`
	ValidFrom          models.Month        `json:"valid_from" binding:"required" example:"2024-01"`
	DedicatedAccountID *uint               `json:"dedicated_account_id"`
}

// RenameCategoryRequest 重命名请求
type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"外卖"`
}

// MoveCategoryRequest 调整顺序请求
type MoveCategoryRequest struct {
	Direction ledger.Direction `json:"direction" binding:"required,oneof=up down" example:"up"`
}

// ArchiveCategoryRequest 归档请求
type ArchiveCategoryRequest struct {
	Month models.Month `json:"month" binding:"required" example:"2024-09"`
	Force bool         `json:"force"`
}

// List 类别列表
// @Summary 类别列表
// @Description 不带 month 返回全部类别；带 month 只返回该月可见的类别
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份 (2024-06)"
// @Success 200 {object} Response{data=[]models.Category}
// @Failure 400 {object} Response
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	ws := middleware.GetCurrentWorkspaceID(c)
	month, ok := queryMonth(c, "month")
	if !ok {
		return
	}
	var (
		cats []models.Category
		err  error
	)
	if month != nil {
		cats, err = h.ledger.ListVisibleCategories(c.Request.Context(), ws, *month)
	} else {
		cats, err = h.ledger.ListCategories(c.Request.Context(), ws)
	}
	if err != nil {
		respondError(c, err, "获取类别失败")
		return
	}
	Success(c, cats)
}

// Create 新建类别
// @Summary 新建类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category}
// @Failure 400 {object} Response
// @Failure 409 {object} Response "专用储蓄账户已被关联"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	cat, err := h.ledger.CreateCategory(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), ledger.NewCategory{
		Name:               req.Name,
		Type:               req.Type,
		ParentID:           req.ParentID,
		ValidFrom:          req.ValidFrom,
		DedicatedAccountID: req.DedicatedAccountID,
	})
	if err != nil {
		respondError(c, err, "创建类别失败")
		return
	}
	SuccessWithMessage(c, "创建成功", cat)
}

// Rename 重命名类别
// @Summary 重命名类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别 ID"
// @Param request body RenameCategoryRequest true "新名称"
// @Success 200 {object} Response{data=models.Category}
// @Failure 404 {object} Response
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Rename(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	cat, err := h.ledger.RenameCategory(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), id, req.Name)
	if err != nil {
		respondError(c, err, "更新类别失败")
		return
	}
	SuccessWithMessage(c, "更新成功", cat)
}

// Move 与相邻同级交换顺序
// @Summary 调整类别顺序
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别 ID"
// @Param request body MoveCategoryRequest true "方向"
// @Success 200 {object} Response
// @Failure 409 {object} Response "同级排序重复"
// @Router /api/v1/categories/{id}/move [post]
func (h *CategoryHandler) Move(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req MoveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if err := h.ledger.MoveCategory(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), id, req.Direction); err != nil {
		respondError(c, err, "调整顺序失败")
		return
	}
	SuccessWithMessage(c, "调整成功", nil)
}

// Archive 从某月起归档类别
// @Summary 归档类别
// @Description 类别组连同子类别一起归档。会连带归档专用储蓄账户时返回 202，需带 force=true 重新提交
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别 ID"
// @Param request body ArchiveCategoryRequest true "生效月份"
// @Success 200 {object} Response{data=ledger.ArchivePlan}
// @Success 202 {object} Response{data=ledger.ArchivePlan} "需要确认"
// @Failure 409 {object} Response "之后仍有交易或预算，或专用账户余额不为 0"
// @Router /api/v1/categories/{id}/archive [post]
func (h *CategoryHandler) Archive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ArchiveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	plan, err := h.ledger.ArchiveCategory(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), id, req.Month, req.Force)
	if err != nil {
		respondError(c, err, "归档类别失败")
		return
	}
	if plan.Outcome == ledger.OutcomeNeedsConfirmation {
		Accepted(c, "将同时归档专用储蓄账户，请确认后以 force=true 重新提交", plan)
		return
	}
	SuccessWithMessage(c, "归档成功", plan)
}

// Restore 取消归档
// @Summary 恢复类别
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别 ID"
// @Success 200 {object} Response{data=[]models.Category}
// @Failure 400 {object} Response "父类别仍是归档状态"
// @Router /api/v1/categories/{id}/restore [post]
func (h *CategoryHandler) Restore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cats, err := h.ledger.RestoreCategory(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), id)
	if err != nil {
		respondError(c, err, "恢复类别失败")
		return
	}
	SuccessWithMessage(c, "恢复成功", cats)
}
