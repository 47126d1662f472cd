package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alucardeht/home-display-agent/internal/backend"
	"github.com/alucardeht/home-display-agent/internal/catalog"
	"github.com/alucardeht/home-display-agent/internal/config"
	"github.com/alucardeht/home-display-agent/internal/dispatch"
	"github.com/alucardeht/home-display-agent/internal/logger"
	"github.com/alucardeht/home-display-agent/internal/mcp"
	"github.com/alucardeht/home-display-agent/internal/metrics"
	"github.com/alucardeht/home-display-agent/internal/tools"
	"github.com/alucardeht/home-display-agent/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "home-display-agent",
		Short: "MCP server for the home display services",
		Long: `home-display-agent exposes the audio identification, image optimization,
overlay, dispatcher and monitor services as MCP tools over stdio.

Backend URLs and logging are configured through the environment
(AUDIO_ID_URL, IMAGE_OPT_URL, OVERLAY_URL, DISPATCHER_URL, MONITOR_URL,
LOG_LEVEL, ...), optionally loaded from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load before the environment (default ./.env if present)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve MCP on stdin/stdout (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), envFile)
			},
		},
		&cobra.Command{
			Use:   "tools",
			Short: "Print the exposed tool catalog as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(envFile)
				if err != nil {
					return err
				}
				registry, err := buildRegistry(cfg, nil)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(mcp.Describe(registry.List()))
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (MCP %s)\n", mcp.ServerName, version.Version, version.ProtocolVersion)
			},
		},
	)

	return root
}

func loadConfig(envFile string) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.Format = cfg.LogFormat
	logger.Init(logCfg)
	return cfg, nil
}

func runServe(ctx context.Context, envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	log := logger.ForComponent("main")
	log.Info("starting home-display-agent", "version", version.Version, "log_level", cfg.LogLevel)
	log.Info("service urls",
		"audio_id", cfg.Services.AudioIDURL,
		"image_opt", cfg.Services.ImageOptURL,
		"overlay", cfg.Services.OverlayURL,
		"dispatcher", cfg.Services.DispatcherURL,
		"monitor", cfg.Services.MonitorURL)

	m := metrics.New(nil)
	registry, err := buildRegistry(cfg, m)
	if err != nil {
		return err
	}
	log.Info("tools registered", "count", registry.Len(), "patterns", cfg.Tools)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error("metrics listener failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	d := dispatch.New(registry, dispatch.WithRecorder(m))
	return mcp.NewServer(d).ServeStdio(ctx)
}

// buildRegistry binds the catalog to the configured backends and keeps the
// tools allowed by MCP_TOOLS. m may be nil.
func buildRegistry(cfg *config.Config, m *metrics.Metrics) (*tools.Registry, error) {
	opts := []backend.Option{}
	if m != nil {
		opts = append(opts, backend.WithObserver(m))
	}
	client := backend.NewClient(opts...)

	all := tools.NewRegistry()
	if err := all.RegisterAll(catalog.Tools(catalog.Entries(), cfg.Services, client)); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	registry, err := all.Filter(cfg.Tools)
	if err != nil {
		return nil, fmt.Errorf("invalid MCP_TOOLS: %w", err)
	}
	if registry.Len() == 0 {
		logger.Warn("no tools match MCP_TOOLS", "patterns", cfg.Tools)
	}
	return registry, nil
}
