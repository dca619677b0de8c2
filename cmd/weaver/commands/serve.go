package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmweaver/vmweaver/pkg/api"
	"github.com/vmweaver/vmweaver/pkg/config"
	"github.com/vmweaver/vmweaver/pkg/engine"
	"github.com/vmweaver/vmweaver/pkg/providers"
	"github.com/vmweaver/vmweaver/pkg/stores"
	"github.com/vmweaver/vmweaver/pkg/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var listenAddress string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the provisioning API server",
		Long: `Start the HTTP API server.

The server exposes the full provisioning surface:
  - POST /api/v1/vm/provision     submit a provisioning request
  - GET  /api/v1/vms              list VM records with pagination
  - GET  /api/v1/vms/{id}         fetch a single VM record
  - PUT  /api/v1/vms/{id}/status  apply a lifecycle transition
  - GET  /api/v1/vms-summary      aggregate counts and recent records
  - GET  /api/v1/providers        provider discovery
  - GET  /health                  store health check

Log level changes in the config file are applied without a restart.`,
		Example: `  # Serve with defaults (listens on :8080, vmweaver.db in cwd)
  weaver serve

  # Serve with a config file
  weaver serve --config /etc/vmweaver/config.yaml

  # Override the listen address
  weaver serve --listen :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if listenAddress != "" {
				cfg.Server.ListenAddress = listenAddress
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}
			return runServer(cmd.Context(), cfg, cmd.Root().Version)
		},
	}

	cmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "listen address (overrides config)")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, version string) error {
	logger, err := telemetry.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	metrics, err := telemetry.NewMetrics(cfg.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	tracer, err := telemetry.NewTracer(ctx, cfg.Tracing, "vmweaver", version)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}

	store, err := stores.NewSQLiteStore(stores.Config{
		Path:    cfg.Store.Path,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return err
	}
	defer func() { _ = store.Close() }()

	orch := engine.NewOrchestrator(providers.NewRegistry(), store, logger, metrics)
	srv := api.NewServer(cfg.Server, orch, logger, metrics)

	if err := config.WatchLogLevel(ctx, configPath, logger); err != nil {
		logger.WithError(err).Warn("config watcher unavailable, log level is fixed")
	}

	metricsErrCh := metrics.StartServer()
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErrCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case err := <-metricsErrCh:
		if err != nil {
			logger.WithError(err).Error("metrics listener failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("API server shutdown failed")
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("metrics shutdown failed")
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("tracer shutdown failed")
	}
	return nil
}
