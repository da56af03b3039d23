// Command healthstub serves the health-check wire contract from mutable
// in-memory state. It stands in for a deployed service when exercising
// verify-commit in pipelines and tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commitverify/internal/api"
	"commitverify/internal/config"
	"commitverify/internal/logger"
	"commitverify/internal/models"
	"commitverify/internal/observability"
	"commitverify/internal/version"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envFile    = flag.String("env-file", "", "Path to a dotenv file loaded before configuration")
	commit     = flag.String("commit", "", "Commit to report (defaults to the build's git commit)")
	port       = flag.Int("port", 0, "Port to listen on (overrides configuration)")
	failStatus = flag.Int("fail-status", 0, "Answer health requests with this HTTP status")
)

func main() {
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		slog.Error("Failed to load env file", "error", err)
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(2)
	}
	applyFlags(cfg)
	if err := cfg.Stub.Validate(); err != nil {
		slog.Error("Invalid stub configuration", "error", err)
		os.Exit(2)
	}

	ver := version.GetInfo()

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, ver, "healthstub")
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	state := api.NewStateStore(initialState(cfg.Stub, ver))
	handlers := api.NewHandlers(state)

	routeOpts := []api.RouteOption{}
	if cfg.Observability.Tracing.Enabled {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(cfg.Observability.ServiceName))
	}
	router := api.SetupRoutes(handlers, routeOpts...)

	// Start metrics server if enabled
	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, otelProvider)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Stub.Host, cfg.Stub.Port),
		Handler:      router,
		ReadTimeout:  cfg.Stub.ReadTimeout,
		WriteTimeout: cfg.Stub.WriteTimeout,
	}

	go func() {
		current := state.Get()
		slog.Info("Starting health stub",
			"addr", server.Addr,
			"commit", current.Commit,
			"healthy", current.Healthy,
			"connection_status", current.ConnectionStatus,
			"fail_status", current.FailStatus)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down health stub")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Health stub shutdown complete")
}

// applyFlags lets explicit flags win over file and environment configuration.
func applyFlags(cfg *models.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "commit":
			cfg.Stub.Commit = *commit
		case "port":
			cfg.Stub.Port = *port
		case "fail-status":
			cfg.Stub.FailStatus = *failStatus
		}
	})
}

// initialState falls back to the build's commit when none is configured.
func initialState(cfg models.StubConfig, ver version.Info) models.StubState {
	state := models.NewStubState(cfg)
	if state.Commit == "" {
		state.Commit = ver.GitCommit
	}
	return state
}
