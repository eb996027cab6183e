package handlers

import (
	"io/fs"
	"net/http"

	"shieldsite/internal/models"
	sectionrender "shieldsite/internal/render"
	"shieldsite/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionCookieName = "shield_session"

// Dependencies is everything the router needs to serve the site.
type Dependencies struct {
	ContentService *services.ContentService
	EditSessions   *services.EditSessions
	SectionService *services.SectionService
	SettingService *services.SettingService
	BackupService  *services.BackupService
	Renderer       *sectionrender.Renderer

	TemplatesFS     fs.FS
	StaticFS        fs.FS
	SessionSecret   []byte
	InsecureCookies bool
}

// NewRouter builds the gin engine with every route of the site.
func NewRouter(d Dependencies) (*gin.Engine, error) {
	htmlRender, err := NewHTMLRenderer(d.TemplatesFS)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.HTMLRender = htmlRender

	store := cookie.NewStore(d.SessionSecret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(services.EditSessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   !d.InsecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, store))
	r.Use(SettingsMiddleware(d.SettingService))

	if d.StaticFS != nil {
		r.StaticFS("/static", http.FS(d.StaticFS))
	}

	pageHandler := NewPageHandler(d.ContentService, d.SectionService, d.Renderer)
	authHandler := NewAuthHandler(d.SettingService, d.EditSessions)
	apiHandler := NewAPIHandler(d.ContentService, d.EditSessions, d.SectionService)
	adminHandler := NewAdminHandler(d.ContentService, d.EditSessions, d.SectionService, d.SettingService, d.BackupService)

	// Public pages
	r.GET("/", pageHandler.Home)
	for _, page := range []string{models.PageAbout, models.PagePrograms, models.PageImpact} {
		r.GET("/"+page, pageHandler.ShowPage(page))
	}
	r.GET("/api/site-content", pageHandler.SiteContent)
	r.GET("/api/page-sections/:page", pageHandler.PageSections)

	// Auth
	r.GET("/login", authHandler.ShowLoginPage)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Admin panel
	admin := r.Group("/admin")
	admin.Use(AuthMiddleware())
	{
		admin.GET("/", adminHandler.ShowPanel)
		admin.POST("/settings", adminHandler.UpdateSettings)
		admin.POST("/backup/test/:target", adminHandler.TestBackupTarget)
		admin.POST("/backup/run/:target", adminHandler.RunBackup)
		admin.GET("/backup/download", adminHandler.DownloadBackup)
		admin.POST("/backup/restore", adminHandler.RestoreBackup)
		apiHandler.Register(admin.Group("/api"))
	}

	// Token API
	api := r.Group("/api/v1")
	api.Use(APIAuthMiddleware(d.SettingService))
	apiHandler.Register(api)

	r.NoRoute(pageHandler.NotFound)
	return r, nil
}
