package cmd

import (
	"github.com/spf13/cobra"

	"github.com/c14220110/findmyclinic-backend/pkg/storage/mariadb"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MariaDB tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
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
		logger.Info().Str("database", cfg.DBName).Msg("schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
