package cmd

import (
	"github.com/spf13/cobra"

	"github.com/c14220110/findmyclinic-backend/pkg/storage/mariadb"
	"github.com/c14220110/findmyclinic-backend/pkg/storage/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample clinic directory into an empty MariaDB database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		clinics, err := seed.Clinics()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := mariadb.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		n, err := mariadb.New(db).SeedClinics(cmd.Context(), clinics)
		if err != nil {
			return err
		}
		if n == 0 {
			logger.Info().Msg("clinics table not empty, nothing seeded")
			return nil
		}
		logger.Info().Int("clinics", n).Msg("seeded clinic directory")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
