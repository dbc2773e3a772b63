package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/noot-app/mealplan-scaler/internal/auth"
	"github.com/noot-app/mealplan-scaler/internal/catalog"
	"github.com/noot-app/mealplan-scaler/internal/config"
	"github.com/noot-app/mealplan-scaler/internal/macros"
	"github.com/noot-app/mealplan-scaler/internal/mcpgo"
	"github.com/noot-app/mealplan-scaler/internal/plans"
	"github.com/noot-app/mealplan-scaler/internal/scaling"
	"github.com/noot-app/mealplan-scaler/internal/units"
	"github.com/spf13/cobra"
)

const rootLong = `Meal Plan Scaler adapts authored meal plans to a body weight.

Plans are written for a reference body weight (100 kg). For another weight every
continuous ingredient amount is scaled linearly and items counted in pieces stay as
they are. A remaining calorie surplus or deficit is then spread over the meals in
proportion to their adjustable energy, and within each meal over its continuous
ingredients.

The server operates in three modes:

1. STDIO Mode (--stdio): For local MCP clients
   - Uses stdio pipes for communication
   - No authentication required

2. HTTP Mode (default): For remote deployment
   - Streamable HTTP MCP endpoint on /mcp
   - Requires Bearer token authentication (except /health)

3. Fetch Plans Mode (--fetch-plans): Download the plan catalog and exit
   - Downloads PLANS_URL into PLANS_PATH when the local copy is stale

Available MCP Tools:
- list_plans: List the plans in the catalog
- scale_day_for_body_weight: Scale one day of a plan to a body weight
- scale_weight_table: Scale one day of a plan for a range of body weights

Authentication (HTTP Mode Only):
Use the AUTH_TOKEN environment variable to set the bearer token.`

// newRootCmd builds the command tree. Each call returns a fresh tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mealplan-scaler",
		Short:         "Scale meal plans to a body weight",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fetchPlans, _ := cmd.Flags().GetBool("fetch-plans")
			if fetchPlans {
				return runFetchPlansMode(cmd.Context())
			}

			stdio, _ := cmd.Flags().GetBool("stdio")
			if stdio {
				return runStdioMode(cmd.Context())
			}
			return runHTTPMode(cmd.Context())
		},
	}

	rootCmd.Flags().Bool("stdio", false, "Run in stdio mode for local MCP clients (default: HTTP mode for remote deployment)")
	rootCmd.Flags().Bool("fetch-plans", false, "Fetch the plan catalog and exit")

	rootCmd.AddCommand(newScaleCmd(), newTableCmd(), newVersionCmd())
	return rootCmd
}

// app holds the components shared by every mode
type app struct {
	cfg    *config.Config
	store  plans.Store
	engine *scaling.Engine
}

// newApp prepares the catalog, the plan store and the scaling engine
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if cfg.PlansURL != "" {
		if err := catalog.NewFetcher(cfg, os.Stderr, logger).EnsureCatalog(ctx); err != nil {
			return nil, fmt.Errorf("ensure plan catalog: %w", err)
		}
	}

	registry, err := units.NewRegistryFromFile(cfg.UnitsFile, logger)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	engine := scaling.NewEngine(macros.NewCalculator(registry), cfg.ScalingOptions(), logger)

	store, err := plans.NewStore(cfg.PlansPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open plan store: %w", err)
	}
	if err := store.HealthCheck(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("plan store health check: %w", err)
	}

	opts := engine.Options()
	logger.Debug("Scaling engine ready",
		"reference_weight_kg", opts.ReferenceWeightKg,
		"min_factor", opts.MinFactor,
		"max_factor", opts.MaxFactor,
		"tolerance_kcal", opts.ToleranceKcal,
		"max_passes", opts.MaxPasses,
		"units", registry.Codes())

	return &app{cfg: cfg, store: store, engine: engine}, nil
}

// runFetchPlansMode downloads the plan catalog and exits
func runFetchPlansMode(ctx context.Context) error {
	logger := config.NewTextLogger(os.Stderr)
	cfg := config.Load()

	logger.Info("🗄️  Starting plan catalog fetch",
		"mode", "fetch-plans",
		"url", cfg.PlansURL,
		"target_dir", filepath.Dir(cfg.PlansPath))

	if cfg.PlansURL == "" {
		return fmt.Errorf("PLANS_URL is not set")
	}

	if err := catalog.NewFetcher(cfg, os.Stderr, logger).EnsureCatalog(ctx); err != nil {
		logger.Error("Failed to fetch plan catalog", "error", err)
		return err
	}

	logger.Info("✅ Plan catalog fetch completed",
		"plans_path", cfg.PlansPath,
		"metadata_path", cfg.MetadataPath)
	return nil
}

// runStdioMode runs the MCP server on stdio
func runStdioMode(ctx context.Context) error {
	// stdout carries the MCP protocol, logs go to stderr
	logger := config.NewLogger(true)
	cfg := config.Load()

	logger.Info("🔌 Starting Meal Plan Scaler in STDIO mode",
		"mode", "stdio",
		"auth", "not required for stdio mode",
		"transport", "stdio pipes")

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", "error", err)
		return err
	}
	defer a.store.Close()

	mcpSrv := mcpgo.NewServer(a.store, a.engine, auth.NewBearerTokenAuth(cfg.AuthToken), logger)
	return mcpSrv.ServeStdio()
}

// runHTTPMode runs the MCP server over streamable HTTP until interrupted
func runHTTPMode(ctx context.Context) error {
	logger := config.NewLogger(false)
	cfg := config.Load()

	logger.Info("🌐 Starting Meal Plan Scaler in HTTP mode",
		"mode", "http",
		"auth", "Bearer token required (except /health endpoint)",
		"transport", "streamable HTTP",
		"port", cfg.Port,
		"environment", cfg.Environment)

	if !cfg.IsDevelopment() && cfg.AuthToken == config.DefaultAuthToken {
		logger.Warn("AUTH_TOKEN is the default value, set a real token for remote deployments")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", "error", err)
		return err
	}
	defer a.store.Close()

	mcpSrv := mcpgo.NewServer(a.store, a.engine, auth.NewBearerTokenAuth(cfg.AuthToken), logger)
	return mcpSrv.ServeHTTP(ctx, ":"+cfg.Port)
}

// Execute runs the command tree with the process arguments
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

// Run is the main entry point for the CLI application
func Run() error {
	return Execute()
}
