package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/internal/telemetry"
	"github.com/harborml/longshore/pkg/api"
	"github.com/harborml/longshore/pkg/config"
	"github.com/spf13/cobra"

	// Import prometheus metrics to register init() functions
	_ "github.com/harborml/longshore/pkg/metrics/prometheus"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Longshore server",
	Long: `Start the Longshore upload server with the specified configuration.

By default, the server runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/longshore/config.yaml.

Examples:
  # Start in background (default)
  longshore start

  # Start in foreground
  longshore start --foreground

  # Start with custom config file
  longshore start --config /etc/longshore/config.yaml

  # Start with environment variable overrides
  LONGSHORE_LOGGING_LEVEL=DEBUG longshore start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/longshore/longshore.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/longshore/longshore.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	// Handle daemon mode (background)
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Apply logging changes from config edits without a restart. Everything
	// else keeps its value until the server is restarted.
	watchPath := GetConfigFile()
	if watchPath == "" {
		watchPath = config.GetDefaultConfigPath()
	}
	if err := config.Watch(watchPath, func(next *config.Config) {
		logger.SetLevel(next.Logging.Level)
		logger.SetFormat(next.Logging.Format)
		logger.Info("Logging configuration reloaded",
			"level", next.Logging.Level, "format", next.Logging.Format)
	}); err != nil {
		logger.Warn("Config watch unavailable", "error", err)
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "longshore",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "longshore",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("Longshore - Chunked upload server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Initialize metrics FIRST (before creating the engine that uses them)
	metricsResult := config.InitializeMetrics(cfg)

	// Initialize the upload engine (chunk store, session recovery, catalog,
	// sink pipeline, sweeper)
	engine, err := config.InitializeEngine(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize upload engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("Engine shutdown error", "error", err)
		}
	}()
	if engine.Recovered > 0 {
		logger.Info("Recovered in-flight sessions", "count", engine.Recovered)
	}

	// Create the API server over the engine
	apiServer := api.NewServer(cfg.Server, api.Deps{
		Service:  engine.Service,
		Pipeline: engine.Pipeline,
		Catalog:  engine.Catalog,
		Chunks:   engine.Chunks,
	})
	logger.Info("API server configured", "port", apiServer.Port())

	// Start metrics server if enabled
	if metricsResult.Server != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
		go func() {
			if err := metricsResult.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error", "error", err)
			}
		}()
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Start the sweeper
	if engine.Sweeper != nil {
		engine.Sweeper.Start(ctx)
		defer engine.Sweeper.Stop(cfg.ShutdownTimeout)
		logger.Info("Sweeper started", "interval", cfg.Sweeper.Interval, "ttl", cfg.Sweeper.TTL)
	}

	// Write PID file if specified
	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	// Start API server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Wait for server to shut down gracefully
		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		cancel()
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
