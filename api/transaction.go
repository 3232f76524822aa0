package api

import (
	"budget/ledger"
	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler 交易
type TransactionHandler struct {
	ledger *service.Ledger
}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler(l *service.Ledger) *TransactionHandler {
	return &TransactionHandler{ledger: l}
}

// CreateTransactionRequest 记账请求
type CreateTransactionRequest struct {
	Type                 string           `json:"type" binding:"required,oneof=income expense transfer" example:"expense"`
	Amount               *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"35.50"`
	TransactionDate      models.Date      `json:"transaction_date" swaggertype:"string" example:"2024-06-03"`
	AccountID            uint             `json:"account_id" binding:"required" example:"1"`
	DestinationAccountID *uint            `json:"destination_account_id"`
	CategoryID           *uint            `json:"category_id" example:"11"`
	Note                 string           `json:"note" binding:"max=255" example:"午餐"`
}

// UpdateTransactionRequest 编辑交易，省略的字段不修改
type UpdateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount" swaggertype:"string"`
	TransactionDate *models.Date     `json:"transaction_date" swaggertype:"string"`
	Note            *string          `json:"note" binding:"omitempty,max=255"`
	CategoryID      *uint            `json:"category_id"`
}

// List 交易列表
// @Summary 交易列表
// @Description 按日期倒序；转账按转出或转入账户都能筛到
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份 (2024-06)"
// @Param account_id query int false "账户 ID"
// @Param category_id query int false "类别 ID"
// @Success 200 {object} Response{data=[]models.Transaction}
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var (
		filter service.TransactionFilter
		ok     bool
	)
	if filter.Month, ok = queryMonth(c, "month"); !ok {
		return
	}
	if filter.AccountID, ok = queryUint(c, "account_id"); !ok {
		return
	}
	if filter.CategoryID, ok = queryUint(c, "category_id"); !ok {
		return
	}
	rows, err := h.ledger.ListTransactions(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), filter)
	if err != nil {
		respondError(c, err, "获取交易失败")
		return
	}
	Success(c, rows)
}

// Create 记账
// @Summary 记账
// @Description 使用专用储蓄类别时会同时生成储蓄账户一侧的记录，返回两条
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=[]models.Transaction}
// @Failure 400 {object} Response
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	txs, err := h.ledger.RecordTransaction(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), ledger.NewTransaction{
		Type:                 req.Type,
		Amount:               *req.Amount,
		Date:                 req.TransactionDate,
		AccountID:            req.AccountID,
		DestinationAccountID: req.DestinationAccountID,
		CategoryID:           req.CategoryID,
		Note:                 req.Note,
	})
	if err != nil {
		respondError(c, err, "记账失败")
		return
	}
	SuccessWithMessage(c, "创建成功", txs)
}

// Update 编辑交易
// @Summary 编辑交易
// @Description 专用储蓄交易的金额、日期和备注会同步到另一侧
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易 ID"
// @Param request body UpdateTransactionRequest true "修改的字段"
// @Success 200 {object} Response{data=[]models.Transaction}
// @Failure 404 {object} Response
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	txs, err := h.ledger.UpdateTransaction(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), id, ledger.TransactionPatch{
		Amount:     req.Amount,
		Date:       req.TransactionDate,
		Note:       req.Note,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		respondError(c, err, "更新交易失败")
		return
	}
	SuccessWithMessage(c, "更新成功", txs)
}

// Delete 删除交易
// @Summary 删除交易
// @Description 专用储蓄交易两侧一起删除
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易 ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteTransaction(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), id); err != nil {
		respondError(c, err, "删除交易失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
