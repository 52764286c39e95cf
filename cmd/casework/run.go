package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/autocomply/casework/pkg/audit"
	"github.com/autocomply/casework/pkg/cli"
	"github.com/autocomply/casework/pkg/config"
	"github.com/autocomply/casework/pkg/intelligence"
	"github.com/autocomply/casework/pkg/recompute"
	"github.com/autocomply/casework/pkg/retention"
	"github.com/autocomply/casework/pkg/rules"
	"github.com/autocomply/casework/pkg/server"
	"github.com/autocomply/casework/pkg/store"
	"github.com/autocomply/casework/pkg/telemetry/health"
	"github.com/autocomply/casework/pkg/telemetry/metrics"
	"github.com/autocomply/casework/pkg/workflow"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the case workflow server",
	Long: `Start the case workflow server with the specified configuration.

The server listens on the configured address and serves submission intake,
case review, evidence, attachment, decision intelligence, and audit export
endpoints.

Examples:
  # Start with default config
  casework run

  # Start with custom config
  casework run --config /etc/casework/config.yaml

  # Override listen address
  casework run --listen 0.0.0.0:8080

  # Validate config without starting the server
  casework run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	var logLevel slog.Level
	switch cfg.Telemetry.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}
	for _, w := range config.Warnings(cfg) {
		slog.Warn("configuration warning", "warning", w)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	slog.Info("opening primary store", "path", cfg.Store.DatabaseURL)
	primaryStore, err := store.New(&store.Config{
		Path:         cfg.Store.DatabaseURL,
		MaxOpenConns: cfg.Store.MaxOpenConns,
		MaxIdleConns: cfg.Store.MaxOpenConns,
		WALMode:      true,
		BusyTimeout:  cfg.Store.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open primary store: %w", err)
	}
	defer primaryStore.Close()
	fmt.Println("✓ Primary store opened")

	slog.Info("opening intelligence chain store", "path", cfg.Intelligence.ChainDatabaseURL)
	chain, err := intelligence.NewChainStore(&intelligence.ChainConfig{
		Path:        cfg.Intelligence.ChainDatabaseURL,
		BusyTimeout: cfg.Store.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open intelligence chain store: %w", err)
	}
	defer chain.Close()
	fmt.Println("✓ Intelligence chain store opened")

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	repo := intelligence.NewRepository(primaryStore, chain)
	repo.SetMetrics(collector)

	hook := recompute.NewHook(repo)
	hook.SetMetrics(collector)

	wf := workflow.New(primaryStore, hook, cfg.Server.UploadsRoot)

	exporter := audit.New(primaryStore, chain, audit.Config{
		SigningKey:            cfg.Audit.SigningKey,
		EvidenceRetentionDays: cfg.Retention.EvidenceRetentionDays,
		PayloadRetentionDays:  cfg.Retention.PayloadRetentionDays,
	})
	exporter.SetMetrics(collector)

	var overlayWatcher *rules.OverlayWatcher
	if cfg.Intelligence.RulePackOverlayDir != "" {
		slog.Info("watching rule pack overlay directory", "dir", cfg.Intelligence.RulePackOverlayDir)
		overlayWatcher, err = rules.NewOverlayWatcher(cfg.Intelligence.RulePackOverlayDir, logger)
		if err != nil {
			slog.Warn("failed to start rule pack overlay watcher", "error", err)
		} else {
			go func() {
				if err := overlayWatcher.Watch(); err != nil {
					slog.Warn("rule pack overlay watcher stopped unexpectedly", "error", err)
				}
			}()
			defer overlayWatcher.Stop()
		}
	}

	pruner := retention.NewPruner(primaryStore, retention.Config{
		EvidenceRetentionDays: cfg.Retention.EvidenceRetentionDays,
		Schedule:              cfg.Retention.Schedule,
	})
	pruner.SetMetrics(collector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		slog.Warn("failed to start retention scheduler", "error", err)
	} else {
		defer pruner.Stop()
		if next := pruner.NextSweep(); next != nil {
			slog.Debug("retention sweep scheduled", "next_sweep", next)
		}
		fmt.Println("✓ Retention scheduler started")
	}

	checker := health.New(5 * time.Second)
	checker.RegisterCheck("store", func(checkCtx context.Context) error {
		return primaryStore.DB().PingContext(checkCtx)
	})
	checker.RegisterCheck("chain_store", func(checkCtx context.Context) error {
		return pingChain(checkCtx, chain)
	})

	srv := server.NewServer(cfg, server.Deps{
		Workflow:  wf,
		Hook:      hook,
		Chain:     chain,
		Exporter:  exporter,
		Health:    checker,
		Metrics:   collector,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "address", cfg.Server.ListenAddress)
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// pingChain verifies the intelligence chain database is reachable. It
// goes through Latest on a sentinel case ID rather than exposing the
// underlying *sql.DB, since ChainStore keeps that handle unexported;
// Latest already maps "no rows" to a nil, nil return.
func pingChain(ctx context.Context, chain *intelligence.ChainStore) error {
	_, err := chain.Latest(ctx, "__healthcheck__")
	return err
}

func printBanner(cfg *config.Config) {
	fmt.Printf("casework v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("store configured", "path", cfg.Store.DatabaseURL)
	slog.Debug("intelligence chain configured", "path", cfg.Intelligence.ChainDatabaseURL)
	slog.Debug("retention schedule", "schedule", cfg.Retention.Schedule)
}
