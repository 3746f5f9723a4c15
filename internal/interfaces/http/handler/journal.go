package handler

import (
	"github.com/gin-gonic/gin"
	journalapp "github.com/scholarly/backcontent/internal/application/journal"
)

// JournalHandler serves journal settings and issues
type JournalHandler struct {
	BaseHandler
	journals *journalapp.JournalService
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journals *journalapp.JournalService) *JournalHandler {
	return &JournalHandler{journals: journals}
}

// Current returns the journal the request is bound to
// @Router /journal [get]
func (h *JournalHandler) Current(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	j, err := h.journals.GetJournal(c.Request.Context(), journalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, j)
}

// UpdateIdentifierSettings godoc
// @Summary      Replace the journal's DOI prefix and pattern
// @Tags         journal
// @Param        request body journalapp.UpdateIdentifierSettingsRequest true "Settings"
// @Router       /journal/identifiers [put]
func (h *JournalHandler) UpdateIdentifierSettings(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	var req journalapp.UpdateIdentifierSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	j, err := h.journals.UpdateIdentifierSettings(c.Request.Context(), journalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, j)
}

// CreateIssue adds an issue to the journal
// @Router /journal/issues [post]
func (h *JournalHandler) CreateIssue(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	var req journalapp.CreateIssueRequest
	if !h.bindJSON(c, &req) {
		return
	}
	issue, err := h.journals.CreateIssue(c.Request.Context(), journalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, issue)
}

// ListIssues returns the journal's issues
// @Router /journal/issues [get]
func (h *JournalHandler) ListIssues(c *gin.Context) {
	journalID, ok := h.journalID(c)
	if !ok {
		return
	}
	issues, err := h.journals.ListIssues(c.Request.Context(), journalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, issues)
}

// Create registers another journal on this installation
// @Router /journals [post]
func (h *JournalHandler) Create(c *gin.Context) {
	var req journalapp.CreateJournalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	j, err := h.journals.CreateJournal(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, j)
}

// List returns every journal
// @Router /journals [get]
func (h *JournalHandler) List(c *gin.Context) {
	journals, err := h.journals.ListJournals(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, journals)
}
