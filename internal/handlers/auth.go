package handlers

import (
	"net/http"

	"shieldsite/internal/constants"
	"shieldsite/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	settingService *services.SettingService
	editSessions   *services.EditSessions
}

func NewAuthHandler(settingService *services.SettingService, editSessions *services.EditSessions) *AuthHandler {
	return &AuthHandler{settingService: settingService, editSessions: editSessions}
}

func (h *AuthHandler) ShowLoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{})
}

func (h *AuthHandler) Login(c *gin.Context) {
	session := sessions.Default(c)
	submittedPassword := c.PostForm(constants.SettingPassword)

	adminPassword := h.settingService.GetSetting(constants.SettingPassword)
	if adminPassword == "" {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "admin password is not configured",
		})
		return
	}

	if submittedPassword != adminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Wrong password, please try again.",
		})
		return
	}

	// Every login gets its own editor id, so two browsers stage edits separately.
	session.Set(constants.SessionKeyAuthenticated, true)
	session.Set(constants.SessionKeyEditorID, uuid.NewString())
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
	})
}

// Logout ends the login and drops anything the editor left staged.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if editorID, ok := session.Get(constants.SessionKeyEditorID).(string); ok && editorID != "" {
		h.editSessions.Forget(editorID)
	}
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/login")
}
