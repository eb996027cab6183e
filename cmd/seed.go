package cmd

import (
	"log"

	"shieldsite/internal/services"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample page sections",
	Long: `seed creates the database if needed, stores the default settings and adds the
sample sections of the about, programs and impact pages. Pages that already have
sections are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		created, err := a.sectionService.Seed(cmd.Context(), services.DefaultSections)
		if err != nil {
			return err
		}
		log.Printf("seeded %d sections into %s", created, appConfig.Database)
		return nil
	},
}
