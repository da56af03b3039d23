// Command verify-commit checks that a deployed service reports the expected
// commit and is healthy. It performs one GET against the service's health
// endpoint and exits 0 only when the commit matches and the service is
// healthy and connected.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commitverify/internal/config"
	"commitverify/internal/logger"
	"commitverify/internal/models"
	"commitverify/internal/observability"
	"commitverify/internal/storage"
	"commitverify/internal/verify"
	"commitverify/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	url           string
	commit        string
	timeout       time.Duration
	match         string
	configFile    string
	envFile       string
	showVersion   bool
	listHistory   int
	exampleConfig string

	// set records which flags appeared on the command line.
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("verify-commit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.url, "url", "", "Health endpoint URL of the deployed service (required)")
	fs.StringVar(&opts.url, "u", "", "Shorthand for --url")
	fs.StringVar(&opts.commit, "commit", "", "Commit ID expected to be deployed (required)")
	fs.StringVar(&opts.commit, "c", "", "Shorthand for --commit")
	fs.DurationVar(&opts.timeout, "timeout", models.DefaultTimeout, "Request timeout")
	fs.StringVar(&opts.match, "match", models.MatchModeExact, "Commit match mode: exact, prefix or semver")
	fs.StringVar(&opts.configFile, "config", "", "Path to a YAML or TOML configuration file")
	fs.StringVar(&opts.envFile, "env-file", "", "Path to a dotenv file loaded before configuration")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version information and exit")
	fs.IntVar(&opts.listHistory, "list-history", 0, "Print the last N recorded verifications and exit")
	fs.StringVar(&opts.exampleConfig, "example-config", "", "Write an example configuration file and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: verify-commit --url URL --commit COMMIT_ID [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts, nil
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return models.ExitOK
		}
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return models.ExitUsage
	}

	ver := version.GetInfo()
	if opts.showVersion {
		fmt.Fprintln(stdout, ver.String())
		return models.ExitOK
	}

	if opts.exampleConfig != "" {
		if err := config.SaveExample(opts.exampleConfig); err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return models.ExitUsage
		}
		fmt.Fprintf(stdout, "Example configuration written to %s\n", opts.exampleConfig)
		return models.ExitOK
	}

	if err := config.LoadEnvFile(opts.envFile); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return models.ExitUsage
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return models.ExitUsage
	}
	if err := applyFlagOverrides(cfg, opts); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return models.ExitUsage
	}

	log, closer, err := logger.Setup(cfg.Logging, ver, "verify-commit")
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: failed to initialize logger: %v\n", err)
		return models.ExitUsage
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.set["list-history"] {
		return listHistory(ctx, cfg, opts.url, opts.listHistory, stdout, stderr)
	}

	if opts.url == "" || opts.commit == "" {
		fmt.Fprintln(stderr, "ERROR: --url and --commit are required")
		return models.ExitUsage
	}

	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: failed to initialize observability: %v\n", err)
		return models.ExitUsage
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	serviceOpts := []verify.Option{
		// The configured user agent, when set, replaces the versioned default.
		verify.WithUserAgent(ver.UserAgent()),
		verify.WithUserAgent(cfg.Verifier.UserAgent),
		verify.WithMaxBodyBytes(cfg.Verifier.MaxBodyBytes),
		verify.WithLogger(log),
	}

	if cfg.History.Enabled {
		history, err := storage.NewFactory().Create(cfg.History)
		if err != nil {
			slog.Warn("History disabled for this run", "type", cfg.History.Type, "error", err)
		} else {
			defer history.Close()
			serviceOpts = append(serviceOpts, verify.WithRecorder(history))
		}
	}

	var verifier verify.Verifier = verify.NewService(serviceOpts...)
	if cfg.Metrics.Enabled || cfg.Observability.Tracing.Enabled {
		instrumented, err := observability.NewInstrumentedVerifier(verifier)
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: failed to instrument verifier: %v\n", err)
			return models.ExitUsage
		}
		verifier = instrumented
	}

	result := verifier.Verify(ctx, &models.VerificationRequest{
		URL:            opts.url,
		ExpectedCommit: opts.commit,
		Timeout:        cfg.Verifier.Timeout,
		MatchMode:      cfg.Verifier.MatchMode,
	})

	if err := verify.WriteReport(stdout, result); err != nil {
		slog.Error("Failed to write report", "error", err)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := otelProvider.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			slog.Warn("Failed to push metrics", "error", err)
		}
	}

	return result.ExitCode
}

// applyFlagOverrides lets explicit command-line flags win over file and
// environment configuration.
func applyFlagOverrides(cfg *models.Config, opts *options) error {
	if opts.set["timeout"] {
		if opts.timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", opts.timeout)
		}
		cfg.Verifier.Timeout = opts.timeout
	}
	if opts.set["match"] {
		if !models.IsValidMatchMode(opts.match) {
			return fmt.Errorf("invalid match mode: %s", opts.match)
		}
		cfg.Verifier.MatchMode = opts.match
	}
	if opts.listHistory < 0 {
		return fmt.Errorf("list-history must not be negative")
	}
	return nil
}
