package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/scholarly/backcontent/internal/application/identity"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// AccountHandler serves login and the account directory
type AccountHandler struct {
	BaseHandler
	accounts *identityapp.AccountService
	auth     *identityapp.AuthService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *identityapp.AccountService, auth *identityapp.AuthService) *AccountHandler {
	return &AccountHandler{accounts: accounts, auth: auth}
}

// Login godoc
// @Summary      Exchange credentials for a journal-bound token pair
// @Tags         auth
// @Param        request body identityapp.LoginRequest true "Credentials"
// @Router       /auth/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Refresh exchanges a refresh token for a new pair
// @Router /auth/refresh [post]
func (h *AccountHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tokens, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tokens)
}

// Create adds an account to the directory
// @Router /accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req identityapp.CreateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.accounts.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// Get returns one account
// @Router /accounts/{account_id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "account_id")
	if !ok {
		return
	}
	account, err := h.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// accountSearchQuery pages through the directory
type accountSearchQuery struct {
	Query    string `form:"q"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=last_name email created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Search pages through the directory
// @Router /accounts [get]
func (h *AccountHandler) Search(c *gin.Context) {
	var q accountSearchQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := shared.DefaultFilter()
	filter.OrderBy = "last_name"
	filter.OrderDir = "asc"
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}
	page, err := h.accounts.Search(c.Request.Context(), q.Query, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GrantRole grants a role on the current journal
// @Router /accounts/{account_id}/roles [post]
func (h *AccountHandler) GrantRole(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	accountID, ok := h.uuidParam(c, "account_id")
	if !ok {
		return
	}
	var req identityapp.GrantRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.accounts.GrantRole(c.Request.Context(), accountID, journalID, identity.Role(req.Role))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}
