package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/interfaces/http/middleware"
)

// ArticleHandler serves the back-content wizard
type ArticleHandler struct {
	BaseHandler
	articles    *backcontent.ArticleService
	wizard      *backcontent.WizardService
	publication *backcontent.PublicationService
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articles *backcontent.ArticleService, wizard *backcontent.WizardService, publication *backcontent.PublicationService) *ArticleHandler {
	return &ArticleHandler{
		articles:    articles,
		wizard:      wizard,
		publication: publication,
	}
}

// Create godoc
// @Summary      Start a blank back-content article
// @Tags         articles
// @Produce      json
// @Success      201 {object} dto.Response{data=backcontent.ArticleResponse}
// @Router       /articles [post]
func (h *ArticleHandler) Create(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	article, err := h.articles.CreateBlank(c.Request.Context(), journalID, middleware.GetAccountID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, article)
}

// List godoc
// @Summary      List the journal's articles
// @Tags         articles
// @Param        search query string false "Title search"
// @Param        stage query string false "back_content or published"
// @Router       /articles [get]
func (h *ArticleHandler) List(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	var filter backcontent.ArticleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.articles.List(c.Request.Context(), journalID, filter)
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
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Get returns the wizard view of one article
// @Router /articles/{id} [get]
func (h *ArticleHandler) Get(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	view, err := h.articles.Get(c.Request.Context(), journalID, articleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// SaveInfo saves wizard section 1
// @Router /articles/{id}/info [put]
func (h *ArticleHandler) SaveInfo(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	var req backcontent.SaveArticleInfoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	article, err := h.articles.SaveInfo(c.Request.Context(), journalID, articleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, article)
}

// SetCorrespondenceAuthor saves wizard section 2
// @Router /articles/{id}/correspondence-author [put]
func (h *ArticleHandler) SetCorrespondenceAuthor(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	var req backcontent.SetCorrespondenceAuthorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	article, err := h.articles.SetCorrespondenceAuthor(c.Request.Context(), journalID, articleID, req.AccountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, article)
}

// SavePublicationInfo saves wizard section 3
// @Router /articles/{id}/publication [put]
func (h *ArticleHandler) SavePublicationInfo(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	var req backcontent.SavePublicationInfoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	article, err := h.articles.SavePublicationInfo(c.Request.Context(), journalID, articleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, article)
}

// Wizard accepts the article page as a form post. The pressed button picks the action.
// @Accept  multipart/form-data
// @Router  /articles/{id}/wizard [post]
func (h *ArticleHandler) Wizard(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	values, files, err := formValues(c)
	if err != nil {
		h.BadRequest(c, "Could not read the form")
		return
	}
	form, err := wizardForm(values)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			middleware.HandleValidationError(c, err)
			return
		}
		h.HandleError(c, err)
		return
	}

	switch form.Action {
	case backcontent.ActionUploadXML, backcontent.ActionUploadPDF, backcontent.ActionUploadOther:
		galleyFiles, closeAll, err := openFiles(uploads(files, string(form.Action)))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		defer closeAll()
		form.Files = galleyFiles
	}

	result, err := h.wizard.Submit(c.Request.Context(), journalID, articleID, form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Publish runs the publication gate
// @Router /articles/{id}/publish [post]
func (h *ArticleHandler) Publish(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	result, err := h.publication.Publish(c.Request.Context(), journalID, articleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
