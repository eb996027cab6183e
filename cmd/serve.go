package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shieldsite/internal/handlers"
	"shieldsite/internal/render"
	"shieldsite/internal/tasks"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `serve starts the public site, the admin panel and the token API, and runs
the scheduled backups configured in the admin settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		a.contentService.LoadLive(cmd.Context())

		var opts []render.Option
		if appConfig.MinifyHTML {
			opts = append(opts, render.WithMinify())
		}
		renderer, err := render.New(opts...)
		if err != nil {
			return err
		}

		scheduler := tasks.NewScheduler(a.settingService, a.backupService)
		a.settingService.OnChange(scheduler.ReloadTasks)
		scheduler.Start()
		defer scheduler.Stop()

		if gin.Mode() == gin.DebugMode && !appConfig.InsecureCookies {
			log.Println("cookies are marked Secure; set insecure_cookies to log in over plain http")
		}

		router, err := handlers.NewRouter(handlers.Dependencies{
			ContentService:  a.contentService,
			EditSessions:    a.editSessions,
			SectionService:  a.sectionService,
			SettingService:  a.settingService,
			BackupService:   a.backupService,
			Renderer:        renderer,
			TemplatesFS:     templatesFS,
			StaticFS:        staticFS,
			SessionSecret:   []byte(appConfig.SessionSecret),
			InsecureCookies: appConfig.InsecureCookies,
		})
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              appConfig.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Printf("server listening on %s", appConfig.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Println("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
