package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/c14220110/findmyclinic-backend/internal/routes"
	"github.com/c14220110/findmyclinic-backend/pkg/telemetry"
	"github.com/c14220110/findmyclinic-backend/pkg/utils"
	"github.com/c14220110/findmyclinic-backend/ws"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and websocket hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdownTracing := telemetry.Setup(ctx, telemetry.Options{
			ServiceName: "findmyclinic-api",
			Endpoint:    cfg.OTELEndpoint,
			Insecure:    cfg.OTELInsecure,
		}, logger)

		store, closeStore, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		hub := ws.NewHub(logger)
		go hub.Run(ctx)

		e := routes.NewServer(routes.Deps{
			Store:   store,
			Config:  cfg,
			Logger:  logger,
			Hub:     hub,
			Revoked: utils.NewRevocationList(),
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           otelhttp.NewHandler(e, "findmyclinic-api"),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info().Str("port", cfg.Port).Str("driver", cfg.StorageDriver).Msg("server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http shutdown")
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("tracer shutdown")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
