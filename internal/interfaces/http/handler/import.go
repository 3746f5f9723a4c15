package handler

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/interfaces/http/middleware"
)

// ImportHandler creates articles from external metadata
type ImportHandler struct {
	BaseHandler
	imports *backcontent.ImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(imports *backcontent.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// DOI godoc
// @Summary      Import an article from Crossref
// @Tags         imports
// @Param        request body backcontent.ImportDOIRequest true "DOI"
// @Router       /imports/doi [post]
func (h *ImportHandler) DOI(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	var req backcontent.ImportDOIRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.imports.ImportDOI(c.Request.Context(), journalID, middleware.GetAccountID(c), req.DOI)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// URL godoc
// @Summary      Import an article from a page's citation meta tags
// @Tags         imports
// @Param        request body backcontent.ImportURLRequest true "URL"
// @Router       /imports/url [post]
func (h *ImportHandler) URL(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	var req backcontent.ImportURLRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.imports.ImportURL(c.Request.Context(), journalID, middleware.GetAccountID(c), req.URL)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// JATS godoc
// @Summary      Import an article from a JATS XML file
// @Tags         imports
// @Accept       multipart/form-data
// @Param        file formData file true "JATS XML"
// @Router       /imports/jats [post]
func (h *ImportHandler) JATS(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Expected a file field")
		return
	}
	files, closeAll, err := openFiles([]*multipart.FileHeader{fh})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer closeAll()

	result, err := h.imports.ImportJATS(c.Request.Context(), journalID, middleware.GetAccountID(c), files[0])
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
