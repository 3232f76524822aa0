package api

import (
	"budget/ledger"
	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AccountHandler 账户
type AccountHandler struct {
	ledger *service.Ledger
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(l *service.Ledger) *AccountHandler {
	return &AccountHandler{ledger: l}
}

// CreateAccountRequest 新建账户请求
type CreateAccountRequest struct {
	Name               string          `json:"name" binding:"required,max=100" example:"工资卡"`
	AccountType        string          `json:"account_type" binding:"required,oneof=standard savings" example:"standard"`
	Currency           string          `json:"currency" example:"CNY"`
	InitialBalance     decimal.Decimal `json:"initial_balance" swaggertype:"string" example:"1000.00"`
	InitialBalanceDate models.Date     `json:"initial_balance_date" swaggertype:"string" example:"2024-01-01"`
}

// UpdateAccountRequest 编辑账户请求，省略的字段不修改
type UpdateAccountRequest struct {
	Name               *string          `json:"name" binding:"omitempty,max=100"`
	Currency           *string          `json:"currency"`
	InitialBalance     *decimal.Decimal `json:"initial_balance" swaggertype:"string"`
	InitialBalanceDate *models.Date     `json:"initial_balance_date" swaggertype:"string"`
}

// BalanceResponse 余额
type BalanceResponse struct {
	AccountID uint            `json:"account_id"`
	AsOf      string          `json:"as_of"`
	Balance   decimal.Decimal `json:"balance" swaggertype:"string"`
}

// List 账户及余额
// @Summary 账户列表
// @Tags 账户
// @Produce json
// @Security BearerAuth
// @Param as_of query string false "截止日期 (2024-06-30)，默认今天"
// @Success 200 {object} Response{data=[]ledger.AccountBalance}
// @Router /api/v1/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return
	}
	rows, err := h.ledger.ListAccounts(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), asOf)
	if err != nil {
		respondError(c, err, "获取账户失败")
		return
	}
	Success(c, rows)
}

// Create 新建账户
// @Summary 新建账户
// @Tags 账户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAccountRequest true "账户信息"
// @Success 200 {object} Response{data=models.Account}
// @Failure 400 {object} Response
// @Router /api/v1/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	acct, err := h.ledger.CreateAccount(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), ledger.NewAccount{
		Name:               req.Name,
		AccountType:        req.AccountType,
		Currency:           req.Currency,
		InitialBalance:     req.InitialBalance,
		InitialBalanceDate: req.InitialBalanceDate,
	})
	if err != nil {
		respondError(c, err, "创建账户失败")
		return
	}
	SuccessWithMessage(c, "创建成功", acct)
}

// Update 编辑账户
// @Summary 编辑账户
// @Tags 账户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户 ID"
// @Param request body UpdateAccountRequest true "修改的字段"
// @Success 200 {object} Response{data=models.Account}
// @Failure 404 {object} Response
// @Router /api/v1/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	acct, err := h.ledger.UpdateAccount(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), id, ledger.AccountPatch{
		Name:               req.Name,
		Currency:           req.Currency,
		InitialBalance:     req.InitialBalance,
		InitialBalanceDate: req.InitialBalanceDate,
	})
	if err != nil {
		respondError(c, err, "更新账户失败")
		return
	}
	SuccessWithMessage(c, "更新成功", acct)
}

// Balance 账户余额
// @Summary 账户余额
// @Tags 账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户 ID"
// @Param as_of query string false "截止日期 (2024-06-30)，默认今天"
// @Success 200 {object} Response{data=BalanceResponse}
// @Failure 404 {object} Response
// @Router /api/v1/accounts/{id}/balance [get]
func (h *AccountHandler) Balance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return
	}
	bal, err := h.ledger.AccountBalance(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), id, asOf)
	if err != nil {
		respondError(c, err, "获取余额失败")
		return
	}
	resp := BalanceResponse{AccountID: id, Balance: bal.Round(2)}
	if asOf != nil {
		resp.AsOf = asOf.String()
	}
	Success(c, resp)
}

// Archive 归档账户
// @Summary 归档账户
// @Description 余额必须为 0；仍被专用类别引用的储蓄账户需通过归档类别来归档
// @Tags 账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户 ID"
// @Success 200 {object} Response{data=models.Account}
// @Failure 409 {object} Response "余额不为 0 或仍被类别引用"
// @Router /api/v1/accounts/{id}/archive [post]
func (h *AccountHandler) Archive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	acct, err := h.ledger.ArchiveAccount(c.Request.Context(), middleware.GetCurrentWorkspaceID(c), id)
	if err != nil {
		respondError(c, err, "归档账户失败")
		return
	}
	SuccessWithMessage(c, "归档成功", acct)
}
