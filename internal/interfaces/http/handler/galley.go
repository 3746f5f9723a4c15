package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scholarly/backcontent/internal/application/backcontent"
)

// GalleyHandler uploads and serves article files
type GalleyHandler struct {
	BaseHandler
	galleys *backcontent.GalleyService
}

// NewGalleyHandler creates a new GalleyHandler
func NewGalleyHandler(galleys *backcontent.GalleyService) *GalleyHandler {
	return &GalleyHandler{galleys: galleys}
}

// Upload godoc
// @Summary      Upload galleys of one kind
// @Tags         galleys
// @Accept       multipart/form-data
// @Param        kind query string true "xml, pdf or other"
// @Param        files formData file true "One or more files"
// @Router       /articles/{id}/galleys [post]
func (h *GalleyHandler) Upload(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		h.BadRequest(c, "Expected a multipart upload")
		return
	}
	files, closeAll, err := openFiles(uploads(form.File, c.Query("kind")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer closeAll()

	galleys, err := h.galleys.Upload(c.Request.Context(), journalID, articleID, c.Query("kind"), files)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, galleys)
}

// List returns an article's galleys
// @Router /articles/{id}/galleys [get]
func (h *GalleyHandler) List(c *gin.Context) {
	journalID, articleID, ok := h.scope(c)
	if !ok {
		return
	}
	galleys, err := h.galleys.List(c.Request.Context(), journalID, articleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, galleys)
}

// DownloadURL returns a presigned URL for a galley
// @Router /galleys/{galley_id}/download [get]
func (h *GalleyHandler) DownloadURL(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	galleyID, ok := h.uuidParam(c, "galley_id")
	if !ok {
		return
	}
	resp, err := h.galleys.DownloadURL(c.Request.Context(), journalID, galleyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a galley
// @Router /galleys/{galley_id} [delete]
func (h *GalleyHandler) Delete(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	galleyID, ok := h.uuidParam(c, "galley_id")
	if !ok {
		return
	}
	if err := h.galleys.Delete(c.Request.Context(), journalID, galleyID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Preview renders an XML galley as HTML
// @Produce html
// @Router  /galleys/{galley_id}/preview [get]
func (h *GalleyHandler) Preview(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	galleyID, ok := h.uuidParam(c, "galley_id")
	if !ok {
		return
	}
	html, err := h.galleys.PreviewXML(c.Request.Context(), journalID, galleyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
