package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"shieldsite/internal/contenttree"
	"shieldsite/internal/models"
	"shieldsite/internal/services"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// APIHandler exposes the content tree, edit sessions and the section registry as
// JSON. It is mounted twice: behind the admin session and behind the bearer token.
type APIHandler struct {
	contentService *services.ContentService
	editSessions   *services.EditSessions
	sectionService *services.SectionService
}

func NewAPIHandler(contentService *services.ContentService, editSessions *services.EditSessions, sectionService *services.SectionService) *APIHandler {
	return &APIHandler{
		contentService: contentService,
		editSessions:   editSessions,
		sectionService: sectionService,
	}
}

// Register mounts every endpoint on group.
func (h *APIHandler) Register(group *gin.RouterGroup) {
	group.GET("/site-content", h.GetSiteContent)
	group.PUT("/site-content", h.PutSiteContent)
	group.PUT("/contact-info", h.PutContactInfo)

	group.POST("/edit-session", h.BeginSession)
	group.GET("/edit-session", h.GetSession)
	group.PUT("/edit-session/value", h.SetSessionValue)
	group.POST("/edit-session/commit", h.CommitSession)
	group.DELETE("/edit-session", h.DiscardSession)

	group.GET("/sections", h.ListSections)
	group.POST("/sections", h.CreateSection)
	group.PUT("/sections/:id", h.UpdateSection)
	group.DELETE("/sections/:id", h.DeleteSection)
}

func (h *APIHandler) GetSiteContent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "content": h.contentService.Live(c.Request.Context())})
}

type siteContentRequest struct {
	Content map[string]any `json:"content"`
}

// PutSiteContent commits a whole tree in one step.
func (h *APIHandler) PutSiteContent(c *gin.Context) {
	var req siteContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body: " + err.Error()})
		return
	}
	tree := contenttree.Normalize(req.Content)
	if err := h.contentService.Commit(c.Request.Context(), tree, editorOf(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Site content updated.", "content": tree})
}

type contactInfoRequest struct {
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	OfficeHours *string `json:"office_hours"`
}

// PutContactInfo updates the supplied contact fields only, through a private edit
// session so the editor's own staged edits are left alone.
func (h *APIHandler) PutContactInfo(c *gin.Context) {
	var req contactInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	session := h.contentService.Begin(ctx, editorOf(c))
	fields := []struct {
		key   string
		value *string
	}{
		{"email", req.Email},
		{"phone", req.Phone},
		{"address", req.Address},
		{"office_hours", req.OfficeHours},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if _, err := session.Set("contact.contactInfo."+f.key, *f.value); err != nil {
			session.Discard()
			respondError(c, err)
			return
		}
	}
	if err := session.Commit(ctx); err != nil {
		session.Discard()
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Contact information updated."})
}

func (h *APIHandler) BeginSession(c *gin.Context) {
	session := h.editSessions.Begin(c.Request.Context(), editorOf(c))
	c.JSON(http.StatusOK, gin.H{"status": "success", "content": session.Staged()})
}

func (h *APIHandler) GetSession(c *gin.Context) {
	session, err := h.editSessions.Get(editorOf(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "content": session.Staged(), "dirty": session.Dirty()})
}

type setValueRequest struct {
	Path  string `json:"path" binding:"required"`
	Value any    `json:"value"`
}

// SetSessionValue stages a string leaf, or a whole sub-tree when value is an object.
func (h *APIHandler) SetSessionValue(c *gin.Context) {
	var req setValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body: " + err.Error()})
		return
	}
	session, err := h.editSessions.Get(editorOf(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var staged contenttree.Tree
	switch v := req.Value.(type) {
	case string:
		staged, err = session.Set(req.Path, v)
	case map[string]any:
		staged, err = session.SetNode(req.Path, contenttree.Normalize(v))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "value must be a string or an object"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "content": staged})
}

func (h *APIHandler) CommitSession(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.editSessions.Commit(ctx, editorOf(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Changes published.", "content": h.contentService.Live(ctx)})
}

func (h *APIHandler) DiscardSession(c *gin.Context) {
	if err := h.editSessions.Discard(editorOf(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Changes discarded."})
}

// ListSections lists every section of ?page=, inactive ones included.
func (h *APIHandler) ListSections(c *gin.Context) {
	page := strings.TrimSpace(c.Query("page"))
	if page == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "page is required"})
		return
	}
	h.respondSections(c, http.StatusOK, page, "")
}

func (h *APIHandler) CreateSection(c *gin.Context) {
	var in services.SectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body: " + err.Error()})
		return
	}
	section, err := h.sectionService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondSections(c, http.StatusCreated, section.Page, "Section created.")
}

func (h *APIHandler) UpdateSection(c *gin.Context) {
	var patch services.SectionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.sectionService.Update(ctx, id, patch); err != nil {
		respondError(c, err)
		return
	}
	section, err := h.sectionService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondSections(c, http.StatusOK, section.Page, "Section updated.")
}

func (h *APIHandler) DeleteSection(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	section, err := h.sectionService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.sectionService.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	h.respondSections(c, http.StatusOK, section.Page, "Section deleted.")
}

// respondSections answers with the freshly fetched list, never a locally patched copy.
func (h *APIHandler) respondSections(c *gin.Context, status int, page, message string) {
	sections, err := h.sectionService.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	if sections == nil {
		sections = []models.PageSection{}
	}
	body := gin.H{"status": "success", "page": page, "sections": sections}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid input", "errors": verrs})
	case errors.Is(err, contenttree.ErrInvalidPath):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
	case errors.Is(err, services.ErrSectionNotFound), errors.Is(err, services.ErrNoEditSession):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": err.Error()})
	case errors.Is(err, services.ErrSessionClosed):
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": err.Error()})
	default:
		log.Printf("request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "The change could not be saved, please retry."})
	}
}
