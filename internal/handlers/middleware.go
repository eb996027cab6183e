package handlers

import (
	"log"
	"net/http"
	"strings"

	"shieldsite/internal/constants"
	"shieldsite/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIAuthMiddleware checks for a valid Bearer token. Writes made with it are
// attributed to the shared API editor.
func APIAuthMiddleware(settingService *services.SettingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminPassword := settingService.GetSetting(constants.SettingPassword)
		if adminPassword == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "admin password is not configured"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authorization header must be Bearer {token}"})
			return
		}

		if parts[1] != adminPassword {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid token"})
			return
		}

		c.Set(constants.ContextKeyEditor, constants.APIEditor)
		c.Next()
	}
}

// AuthMiddleware checks the session flag and puts the editor id in the context.
// Pages redirect to the login form; JSON endpoints answer 401.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		authenticated, _ := session.Get(constants.SessionKeyAuthenticated).(bool)

		if !authenticated {
			if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "login required"})
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		editorID, _ := session.Get(constants.SessionKeyEditorID).(string)
		if editorID == "" {
			editorID = uuid.NewString()
			session.Set(constants.SessionKeyEditorID, editorID)
			if err := session.Save(); err != nil {
				log.Printf("failed to save editor id to session: %v", err)
			}
		}
		c.Set(constants.ContextKeyEditor, editorID)

		c.Next()
	}
}

// SettingsMiddleware adds the cached settings and the login status to the context.
func SettingsMiddleware(settingService *services.SettingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeySettings, settingService.GetAllSettings())

		session := sessions.Default(c)
		isLoggedIn, _ := session.Get(constants.SessionKeyAuthenticated).(bool)
		c.Set(constants.ContextKeyIsLoggedIn, isLoggedIn)

		c.Next()
	}
}

// render is a helper function to render templates with common data.
func render(c *gin.Context, status int, templateName string, data gin.H) {
	if settings, exists := c.Get(constants.ContextKeySettings); exists {
		for key, value := range settings.(map[string]string) {
			// Secrets never reach a template.
			if constants.SecretSettings[key] {
				continue
			}
			if _, ok := data[key]; !ok {
				data[key] = value
			}
		}
	}

	if isLoggedIn, exists := c.Get(constants.ContextKeyIsLoggedIn); exists {
		data[constants.ContextKeyIsLoggedIn] = isLoggedIn
	}

	c.HTML(status, templateName, data)
}

func editorOf(c *gin.Context) string {
	if editor := c.GetString(constants.ContextKeyEditor); editor != "" {
		return editor
	}
	return constants.APIEditor
}
