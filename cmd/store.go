package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/config"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
	"github.com/c14220110/findmyclinic-backend/pkg/storage/mariadb"
	"github.com/c14220110/findmyclinic-backend/pkg/storage/memory"
	"github.com/c14220110/findmyclinic-backend/pkg/storage/seed"
)

func dbOptions(cfg *config.Config) mariadb.Options {
	return mariadb.Options{
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	}
}

// openStore builds the configured driver. The returned close func releases
// the database pool, if any.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.Storage, func() error, error) {
	var clinics []seed.Clinic
	if cfg.SeedClinics {
		var err error
		if clinics, err = seed.Clinics(); err != nil {
			return nil, nil, err
		}
	}

	switch cfg.StorageDriver {
	case config.DriverMySQL:
		db, err := mariadb.Connect(ctx, dbOptions(cfg))
		if err != nil {
			return nil, nil, err
		}
		if err := mariadb.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		store := mariadb.New(db)
		if len(clinics) > 0 {
			n, err := store.SeedClinics(ctx, clinics)
			if err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("seeding clinics: %w", err)
			}
			logger.Info().Int("clinics", n).Msg("seeded clinic directory")
		}
		logger.Info().Str("host", cfg.DBHost).Str("database", cfg.DBName).Msg("connected to MariaDB")
		return store, db.Close, nil
	default:
		store := memory.New()
		n := store.LoadSeed(clinics)
		logger.Info().Int("clinics", n).Msg("using in-memory store")
		return store, func() error { return nil }, nil
	}
}

// openDB connects to MariaDB for the maintenance commands.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.StorageDriver != config.DriverMySQL {
		return nil, fmt.Errorf("storage driver is %q; set STORAGE_DRIVER=%s", cfg.StorageDriver, config.DriverMySQL)
	}
	return mariadb.Connect(ctx, dbOptions(cfg))
}
