package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/scholarly/backcontent/internal/application/backcontent"
)

// AuthorHandler attaches directory accounts to articles
type AuthorHandler struct {
	BaseHandler
	authors *backcontent.AuthorService
}

// NewAuthorHandler creates a new AuthorHandler
func NewAuthorHandler(authors *backcontent.AuthorService) *AuthorHandler {
	return &AuthorHandler{authors: authors}
}

// Add godoc
// @Summary      Attach an author by email, creating the account when missing
// @Tags         authors
// @Accept       json
// @Param        request body backcontent.AddAuthorRequest true "Author"
// @Router       /articles/{id}/authors [post]
func (h *AuthorHandler) Add(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	var req backcontent.AddAuthorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.authors.AddAuthor(c.Request.Context(), journalID, articleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.AccountCreated {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// Remove detaches an author
// @Router /articles/{id}/authors/{account_id} [delete]
func (h *AuthorHandler) Remove(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	accountID, ok := h.uuidParam(c, "account_id")
	if !ok {
		return
	}
	article, err := h.authors.RemoveAuthor(c.Request.Context(), journalID, articleID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, article)
}

// Reorder replaces the author order
// @Router /articles/{id}/authors/order [put]
func (h *AuthorHandler) Reorder(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	var req backcontent.ReorderAuthorsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	article, err := h.authors.ReorderAuthors(c.Request.Context(), journalID, articleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, article)
}

// SearchDirectory godoc
// @Summary      Search accounts by name or email
// @Tags         authors
// @Param        q query string true "At least two characters"
// @Router       /directory [get]
func (h *AuthorHandler) SearchDirectory(c *gin.Context) {
	var filter backcontent.DirectorySearchFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	entries, total, err := h.authors.SearchDirectory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, entries, total, page, pageSize)
}
