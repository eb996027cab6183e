package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"shieldsite/internal/constants"
	"shieldsite/internal/contenttree"
	"shieldsite/internal/models"
	"shieldsite/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const maxBackupUpload = 32 << 20

type AdminHandler struct {
	contentService *services.ContentService
	editSessions   *services.EditSessions
	sectionService *services.SectionService
	settingService *services.SettingService
	backupService  *services.BackupService
}

func NewAdminHandler(contentService *services.ContentService, editSessions *services.EditSessions, sectionService *services.SectionService, settingService *services.SettingService, backupService *services.BackupService) *AdminHandler {
	return &AdminHandler{
		contentService: contentService,
		editSessions:   editSessions,
		sectionService: sectionService,
		settingService: settingService,
		backupService:  backupService,
	}
}

type pageSections struct {
	Page     string
	Sections []models.PageSection
}

// ShowPanel lists the content-tree leaves, staged if an edit session is open, and
// every section of every known page.
func (h *AdminHandler) ShowPanel(c *gin.Context) {
	ctx := c.Request.Context()

	tree := h.contentService.Live(ctx)
	editing := false
	if session, err := h.editSessions.Get(editorOf(c)); err == nil {
		tree = session.Staged()
		editing = true
	}

	pages := make([]pageSections, 0, len(models.KnownPages))
	for _, page := range models.KnownPages {
		sections, err := h.sectionService.List(ctx, page)
		if err != nil {
			log.Printf("failed to load sections for %s: %v", page, err)
		}
		pages = append(pages, pageSections{Page: page, Sections: sections})
	}

	session := sessions.Default(c)
	flashes := session.Flashes(constants.SessionKeySuccessFlash)
	session.Save()

	render(c, http.StatusOK, "admin.html", gin.H{
		"Leaves":  contenttree.Leaves(tree),
		"Editing": editing,
		"Pages":   pages,
		"Flashes": flashes,
	})
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	settingsToUpdate := make(map[string]string)

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid form data"})
		return
	}

	for key, values := range c.Request.PostForm {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		if constants.SecretSettings[key] && value == "" {
			continue
		}
		settingsToUpdate[key] = value
	}

	if err := h.settingService.UpdateSettings(c.Request.Context(), settingsToUpdate); err != nil {
		log.Printf("failed to update settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Settings saved."})
}

// TestBackupTarget checks the connection to a GitHub or WebDAV backup target.
// Blank secrets fall back to the stored ones.
func (h *AdminHandler) TestBackupTarget(c *gin.Context) {
	ctx := c.Request.Context()
	var err error
	switch c.Param("target") {
	case "github":
		token := c.PostForm(constants.SettingGithubToken)
		if token == "" {
			token = h.settingService.GetSetting(constants.SettingGithubToken)
		}
		err = h.backupService.TestGithubConnection(ctx, c.PostForm(constants.SettingGithubRepo), token)
	case "webdav":
		password := c.PostForm(constants.SettingWebdavPassword)
		if password == "" {
			password = h.settingService.GetSetting(constants.SettingWebdavPassword)
		}
		err = h.backupService.TestWebdavConnection(ctx, c.PostForm(constants.SettingWebdavURL), c.PostForm(constants.SettingWebdavUser), password)
	default:
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "unknown backup target"})
		return
	}

	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "Test failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Connection OK."})
}

// RunBackup pushes a backup to the configured target right away.
func (h *AdminHandler) RunBackup(c *gin.Context) {
	ctx := c.Request.Context()
	settings := h.settingService.GetAllSettings()
	var err error
	switch c.Param("target") {
	case "github":
		err = h.backupService.BackupToGithub(ctx, settings[constants.SettingGithubRepo], settings[constants.SettingGithubBranch], settings[constants.SettingGithubToken])
	case "webdav":
		err = h.backupService.BackupToWebdav(ctx, settings[constants.SettingWebdavURL], settings[constants.SettingWebdavUser], settings[constants.SettingWebdavPassword])
	default:
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "unknown backup target"})
		return
	}

	switch {
	case errors.Is(err, services.ErrBackupNoChange):
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Nothing changed since the last backup."})
	case err != nil:
		log.Printf("manual backup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Backup failed: " + err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Backup uploaded."})
	}
}

func (h *AdminHandler) DownloadBackup(c *gin.Context) {
	data, err := h.backupService.Archive(c.Request.Context())
	if err != nil {
		log.Printf("failed to build backup archive: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to build backup: " + err.Error()})
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=site_backup_%s.zip", time.Now().Format("20060102150405")))
	c.Data(http.StatusOK, "application/zip", data)
}

// RestoreBackup accepts a downloaded zip, or its bare backup.json, and replaces the
// content tree and all sections with it.
func (h *AdminHandler) RestoreBackup(c *gin.Context) {
	file, err := c.FormFile("backup")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "no backup file uploaded: " + err.Error()})
		return
	}
	if file.Size > maxBackupUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"status": "error", "message": "backup file too large"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to open upload: " + err.Error()})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to read upload: " + err.Error()})
		return
	}

	backup, err := services.ReadArchive(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.backupService.Restore(c.Request.Context(), backup, editorOf(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": fmt.Sprintf("Restored site content and %d sections.", len(backup.Sections))})
}
