package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"energia/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API exposing the photo-to-meditation pipeline and the
persistence endpoints. The config file is watched while the server runs;
API key and backend changes apply to the next request without a restart.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Config reloads only adjust mutable settings; the listen address is
	// fixed for the lifetime of the process.
	watchPath := configPath
	if watchPath == "" {
		watchPath = config.DefaultPath()
	}
	go func() {
		err := config.Watch(ctx, watchPath, func(updated *config.Config) {
			logger.Info("config reloaded", zap.String("path", watchPath))
			cfg = updated
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("config watching unavailable", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))
	return a.server.ListenAndServe(ctx)
}
