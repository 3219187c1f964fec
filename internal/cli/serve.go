package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kubakubakuba/templogger/internal/app"
	"github.com/kubakubakuba/templogger/internal/config"
	"github.com/kubakubakuba/templogger/internal/logging"
)

func newServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server that logs readings and renders plots.
Configuration comes from the environment (and .env).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			logger := logging.New(cfg, version, appName)
			slog.SetDefault(logger)

			slog.Info("starting",
				"app", appName,
				"version", version,
				"env", cfg.AppEnv,
				"log_level", cfg.LogLevel.String(),
			)

			if err := app.Run(cmd.Context(), cfg); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("run failed", "err", err)
				return err
			}

			slog.Info("shutting down")
			return nil
		},
	}
}
