package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vmweaver/vmweaver/pkg/config"
	"github.com/vmweaver/vmweaver/pkg/engine"
	"github.com/vmweaver/vmweaver/pkg/providers"
	"github.com/vmweaver/vmweaver/pkg/stores"
	"github.com/vmweaver/vmweaver/pkg/telemetry"
)

// buildStack wires the engine for one-shot CLI commands. Metrics and
// tracing stay off; only the serve command runs the full stack.
func buildStack(ctx context.Context) (*engine.Orchestrator, *config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := telemetry.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := stores.NewSQLiteStore(stores.Config{Path: cfg.Store.Path})
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}

	orch := engine.NewOrchestrator(providers.NewRegistry(), store, logger, nil)
	cleanup := func() { _ = store.Close() }
	return orch, cfg, cleanup, nil
}

// printResult renders v as JSON when --json is set, otherwise via the
// provided human-readable formatter.
func printResult(v any, human func()) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}
