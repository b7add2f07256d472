package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/c14220110/findmyclinic-backend/config"
	"github.com/c14220110/findmyclinic-backend/pkg/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "findmyclinic",
	Short: "Clinic discovery and queueing API",
	Long: `Find My Clinic serves the clinic directory, walk-in queues, patient
profiles with QR check-in, and ambulance requests over a REST API with
live queue updates on a websocket.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
}

// bootstrap loads configuration and builds the process logger.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}
	return cfg, logging.New(cfg.AppEnv, cfg.LogLevel), nil
}
