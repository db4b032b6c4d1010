package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"energia/internal/config"
	"energia/internal/emotion"
	"energia/internal/logging"
	"energia/internal/narrative"
	"energia/internal/pipeline"
	"energia/internal/server"
	"energia/internal/store"
	"energia/internal/vision"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dataDir    string
	userID     string

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "energia",
	Short: "energia - photo-to-meditation pipeline",
	Long: `energia turns photos into personalized guided meditations.

A photo is analyzed for scene content, faces, landmarks, and dominant
colors; the analysis is distilled into an emotional profile; and a
meditation is generated from it, falling back through a relay server and
built-in templates so a meditation is always produced. Results sync to
Firestore with a local offline-first cache.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win either way.
		_ = godotenv.Load()

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if verbose {
			cfg.Logging.DebugMode = true
		}

		if err := logging.Initialize(cfg.DataDir, logging.Options{
			DebugMode:  cfg.Logging.DebugMode,
			Level:      cfg.Logging.Level,
			JSONFormat: cfg.Logging.JSONFormat,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			logger.Warn("debug logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// app bundles the wired stages for one command invocation.
type app struct {
	local    *store.LocalStore
	gateway  *store.Gateway
	pipeline *pipeline.Pipeline
	server   *server.Server
}

// buildApp wires the full stack from config. Gemini and relay tiers are
// wired only when configured; the pipeline degrades through whatever is
// present.
func buildApp(ctx context.Context) (*app, error) {
	local, err := store.NewLocalStore(filepath.Join(cfg.DataDir, "energia.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	gateway := store.NewGateway(store.NewFirestoreClient(cfg.Firestore), local)

	analyzer := vision.NewAnalyzer(vision.NewClient(cfg.Vision), &http.Client{Timeout: cfg.Vision.Timeout}, nil)

	var direct narrative.ContentGenerator
	if cfg.Narrative.APIKey != "" {
		gemini, err := narrative.NewGeminiGenerator(ctx, cfg.Narrative)
		if err != nil {
			logger.Warn("gemini unavailable, relying on relay and templates", zap.Error(err))
		} else {
			direct = gemini
		}
	}
	var relay *narrative.RelayClient
	if cfg.Narrative.BackendURL != "" {
		relay = narrative.NewRelayClient(cfg.Narrative.BackendURL, cfg.Narrative.Timeout, cfg.Narrative.MaxRetries)
	}
	generator := narrative.NewGenerator(direct, relay, nil)

	p := pipeline.New(analyzer, emotion.New(nil), generator, gateway, cfg.Server.RequestTimeout)

	return &app{
		local:    local,
		gateway:  gateway,
		pipeline: p,
		server:   server.New(cfg.Server, p, gateway, nil),
	}, nil
}

func (a *app) Close() {
	if err := a.local.Close(); err != nil {
		logger.Warn("failed to close local store", zap.Error(err))
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override data directory")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id (defaults to demo-user)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(meditateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
