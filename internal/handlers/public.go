package handlers

import (
	"log"
	"net/http"

	"shieldsite/internal/models"
	sectionrender "shieldsite/internal/render"
	"shieldsite/internal/services"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the public pages and the read-only JSON endpoints.
type PageHandler struct {
	contentService *services.ContentService
	sectionService *services.SectionService
	renderer       *sectionrender.Renderer
}

func NewPageHandler(contentService *services.ContentService, sectionService *services.SectionService, renderer *sectionrender.Renderer) *PageHandler {
	return &PageHandler{
		contentService: contentService,
		sectionService: sectionService,
		renderer:       renderer,
	}
}

func (h *PageHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/"+models.PageAbout)
}

// ShowPage renders a page: content-tree text with hardcoded fallbacks, then the
// page's active sections in order.
func (h *PageHandler) ShowPage(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tree := h.contentService.Live(ctx)
		sections := h.sectionService.ListActive(ctx, page)

		sectionsHTML, err := h.renderer.HTML(sections)
		if err != nil {
			log.Printf("failed to render sections for %s: %v", page, err)
			render(c, http.StatusInternalServerError, "error.html", gin.H{
				"error": "The page could not be rendered.",
			})
			return
		}

		render(c, http.StatusOK, page+".html", gin.H{
			"Page":     page,
			"Content":  tree,
			"Sections": sectionsHTML,
		})
	}
}

func (h *PageHandler) SiteContent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"content": h.contentService.Live(c.Request.Context())})
}

// PageSections lists the active sections of a page; unknown pages give an empty list.
func (h *PageHandler) PageSections(c *gin.Context) {
	sections := h.sectionService.ListActive(c.Request.Context(), c.Param("page"))
	if sections == nil {
		sections = []models.PageSection{}
	}
	c.JSON(http.StatusOK, sections)
}

func (h *PageHandler) NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "404.html", gin.H{})
}
