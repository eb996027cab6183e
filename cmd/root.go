package cmd

import (
	"fmt"
	"io/fs"
	"os"

	"shieldsite/internal/config"
	"shieldsite/internal/repository"
	"shieldsite/internal/services"
	"shieldsite/internal/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfgFile   string
	appConfig config.Config

	templatesFS fs.FS
	staticFS    fs.FS
)

var rootCmd = &cobra.Command{
	Use:   "shieldsite",
	Short: "Shield Foundation website",
	Long: `shieldsite serves the Shield Foundation website: editable page content,
per-page sections and the admin panel used to maintain them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

// Execute runs the CLI with the given template and static asset filesystems.
func Execute(templates, static fs.FS) {
	templatesFS = templates
	staticFS = static
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.AddCommand(serveCmd, seedCmd, backupCmd)
}

// app holds the wired services shared by the commands.
type app struct {
	db             *gorm.DB
	contentService *services.ContentService
	editSessions   *services.EditSessions
	sectionService *services.SectionService
	settingService *services.SettingService
	backupService  *services.BackupService
}

func newApp(cfg config.Config) (*app, error) {
	db, err := utils.InitDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sectionRepo := repository.NewSectionRepository(db)
	contentService := services.NewContentService(repository.NewContentRepository(db))
	settingService := services.NewSettingService(repository.NewSettingRepository(db))

	return &app{
		db:             db,
		contentService: contentService,
		editSessions:   services.NewEditSessions(contentService),
		sectionService: services.NewSectionService(sectionRepo),
		settingService: settingService,
		backupService:  services.NewBackupService(db, contentService, sectionRepo, settingService),
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}
