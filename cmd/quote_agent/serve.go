package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/quote-pipeline/internal/db"
	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/llm"
	"github.com/jonathan/quote-pipeline/internal/observability"
	"github.com/jonathan/quote-pipeline/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for building, streaming, validating and storing quotes.

Quote storage is enabled when DATABASE_URL (or --db-url) is set. Draft generation is enabled when GEMINI_API_KEY (or --api-key) is set.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	serveAddr       string
	serveDatabase   string
	serveAPIKey     string
	serveAutoFix    bool
	serveCap        bool
	serveLogLevel   string
	serveLogFormat  string
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config file (values can be overridden by other flags)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (defaults to :8080)")
	serveCmd.Flags().StringVar(&serveDatabase, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	serveCmd.Flags().BoolVar(&serveAutoFix, "autofix", false, "Auto-fix quotes unless a request says otherwise")
	serveCmd.Flags().BoolVar(&serveCap, "cap-deduction", false, "Cap ROT/RUT deductions unless a request says otherwise")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format: json or console")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDatabase
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = serveAPIKey
	}
	if cmd.Flags().Changed("autofix") {
		cfg.AutoFix = serveAutoFix
	}
	if cmd.Flags().Changed("cap-deduction") {
		cfg.CapDeduction = serveCap
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = serveLogFormat
	}
	cfg = finishSettings(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvCfg := server.Config{
		Addr:         cfg.Addr,
		AutoFix:      cfg.AutoFix,
		CapDeduction: cfg.CapDeduction,
		DraftTimeout: time.Duration(cfg.DraftTimeout) * time.Second,
		Registry:     jobs.Default(),
		Logger:       logger,
		Metrics:      observability.NewMetrics(prometheus.DefaultRegisterer),
		Gatherer:     prometheus.DefaultGatherer,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		srvCfg.Store = database
	} else {
		logger.Info("DATABASE_URL not set, quote storage disabled")
	}

	if cfg.APIKey != "" {
		client, err := llm.NewClient(ctx, llm.ConfigFromEnv(), cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
		srvCfg.Drafts = llm.NewDraftGenerator(client)
	} else {
		logger.Info("GEMINI_API_KEY not set, draft generation disabled")
	}

	srv := server.New(srvCfg)
	defer srv.Close()

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	return srv.Start(ctx)
}
