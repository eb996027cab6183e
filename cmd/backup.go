package cmd

import (
	"errors"
	"fmt"
	"log"

	"shieldsite/internal/constants"
	"shieldsite/internal/services"

	"github.com/spf13/cobra"
)

var backupTarget string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the site content once",
	Long: `backup pushes an encrypted archive of the site content, sections and settings
to the GitHub repository or WebDAV server configured in the admin settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		settings := a.settingService.GetAllSettings()
		switch backupTarget {
		case "github":
			err = a.backupService.BackupToGithub(ctx, settings[constants.SettingGithubRepo], settings[constants.SettingGithubBranch], settings[constants.SettingGithubToken])
		case "webdav":
			err = a.backupService.BackupToWebdav(ctx, settings[constants.SettingWebdavURL], settings[constants.SettingWebdavUser], settings[constants.SettingWebdavPassword])
		default:
			return fmt.Errorf("unknown backup target %q, want github or webdav", backupTarget)
		}

		if errors.Is(err, services.ErrBackupNoChange) {
			log.Println("content unchanged since the last backup, nothing uploaded")
			return nil
		}
		if err != nil {
			return err
		}
		log.Printf("%s backup uploaded", backupTarget)
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupTarget, "target", "github", "backup target: github or webdav")
}
