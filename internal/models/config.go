// Package models - Tool configuration.
// This file defines the configuration tree shared by verify-commit and the
// health stub, with defaults and validation.
//
// Configuration Philosophy:
// - Hierarchical configuration grouped by component
// - Defaults reproduce the plain one-shot check with nothing persisted
// - Validation catches misconfigurations before any request is sent
package models

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"
)

// History storage type constants
const (
	StorageTypeJSON     = "json"
	StorageTypeMemory   = "memory"
	StorageTypePostgres = "postgres"
	StorageTypeSQLite   = "sqlite"
)

// Trace exporter constants
const (
	TraceExporterStdout = "stdout"
	TraceExporterOTLP   = "otlp"
)

// DefaultTimeout bounds the single health-check request.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps how much of the health response is read.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config is the root configuration structure.
//
// Configuration Structure:
// - Verifier: request and comparison settings
// - History: optional audit trail of verification outcomes
// - Logging: structured logging
// - Metrics / Observability: OpenTelemetry metrics and tracing
// - Stub: the healthstub test service
type Config struct {
	Verifier      VerifierConfig      `yaml:"verifier" toml:"verifier" json:"verifier"`
	History       HistoryConfig       `yaml:"history" toml:"history" json:"history"`
	Logging       LoggingConfig       `yaml:"logging" toml:"logging" json:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics" toml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" toml:"observability" json:"observability"`
	Stub          StubConfig          `yaml:"stub" toml:"stub" json:"stub"`
}

type VerifierConfig struct {
	Timeout      time.Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
	MatchMode    string        `yaml:"match_mode" toml:"match_mode" json:"match_mode"`
	UserAgent    string        `yaml:"user_agent" toml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" toml:"max_body_bytes" json:"max_body_bytes"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Type    string `yaml:"type" toml:"type" json:"type"`
	Path    string `yaml:"path" toml:"path" json:"path"`
	DSN     string `yaml:"dsn" toml:"dsn" json:"dsn"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" toml:"level" json:"level"`
	Format   string `yaml:"format" toml:"format" json:"format"`
	Output   string `yaml:"output" toml:"output" json:"output"`
	FilePath string `yaml:"file_path" toml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled        bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	PushgatewayURL string `yaml:"pushgateway_url" toml:"pushgateway_url" json:"pushgateway_url"`
	Job            string `yaml:"job" toml:"job" json:"job"`
	Path           string `yaml:"path" toml:"path" json:"path"`
	Port           int    `yaml:"port" toml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" toml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" toml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" toml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" toml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" toml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" toml:"sample_rate" json:"sample_rate"`
}

// StubConfig configures the healthstub service. An empty Commit means the
// stub reports the commit it was built from.
type StubConfig struct {
	Host             string        `yaml:"host" toml:"host" json:"host"`
	Port             int           `yaml:"port" toml:"port" json:"port"`
	Commit           string        `yaml:"commit" toml:"commit" json:"commit"`
	Healthy          bool          `yaml:"healthy" toml:"healthy" json:"healthy"`
	ConnectionStatus bool          `yaml:"connection_status" toml:"connection_status" json:"connection_status"`
	FailStatus       int           `yaml:"fail_status" toml:"fail_status" json:"fail_status"`
	ReadTimeout      time.Duration `yaml:"read_timeout" toml:"read_timeout" json:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout" toml:"write_timeout" json:"write_timeout"`
}

// NewDefaultConfig creates a configuration with the tool defaults.
//
// Default Values Rationale:
// - 10-second timeout and exact matching: the classic deploy gate
// - History off: a verification leaves nothing behind unless asked
// - Logs to stderr at warn: stdout carries the verification report
// - Metrics and tracing off: opt-in per pipeline
func NewDefaultConfig() *Config {
	return &Config{
		Verifier: VerifierConfig{
			Timeout:      DefaultTimeout,
			MatchMode:    MatchModeExact,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		History: HistoryConfig{
			Enabled: false,
			Type:    StorageTypeJSON,
			Path:    "./data/verifications.json",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Job:     "verify_commit",
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "verify-commit",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   TraceExporterStdout,
				SampleRate: 1.0,
			},
		},
		Stub: StubConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			Healthy:          true,
			ConnectionStatus: true,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     15 * time.Second,
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Verifier.Validate(); err != nil {
		return fmt.Errorf("invalid verifier config: %w", err)
	}

	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("invalid history config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	if err := c.Stub.Validate(); err != nil {
		return fmt.Errorf("invalid stub config: %w", err)
	}

	return nil
}

func (vc *VerifierConfig) Validate() error {
	if vc.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if !IsValidMatchMode(vc.MatchMode) {
		return fmt.Errorf("invalid match mode: %s", vc.MatchMode)
	}

	if vc.MaxBodyBytes <= 0 {
		return errors.New("max body bytes must be positive")
	}

	return nil
}

func (hc *HistoryConfig) Validate() error {
	if !hc.Enabled {
		return nil
	}

	validTypes := []string{StorageTypeJSON, StorageTypeMemory, StorageTypePostgres, StorageTypeSQLite}
	if !slices.Contains(validTypes, hc.Type) {
		return fmt.Errorf("invalid storage type: %s", hc.Type)
	}

	if hc.Type == StorageTypeJSON && hc.Path == "" {
		return errors.New("path is required for JSON storage")
	}

	if (hc.Type == StorageTypePostgres || hc.Type == StorageTypeSQLite) && hc.DSN == "" {
		return errors.New("database DSN is required for database storage")
	}

	return nil
}

func (lc *LoggingConfig) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, lc.Level) {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	if !slices.Contains([]string{"json", "text"}, lc.Format) {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	if !slices.Contains([]string{"stdout", "stderr", "file"}, lc.Output) {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}

	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}

	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Job == "" {
		return errors.New("metrics job cannot be empty")
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	if mc.PushgatewayURL != "" {
		u, err := url.Parse(mc.PushgatewayURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid pushgateway url: %s", mc.PushgatewayURL)
		}
	}

	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if oc.ServiceName == "" {
		return errors.New("service name cannot be empty")
	}

	if !oc.Tracing.Enabled {
		return nil
	}

	switch oc.Tracing.Exporter {
	case TraceExporterStdout:
	case TraceExporterOTLP:
		if oc.Tracing.OTLPEndpoint == "" {
			return errors.New("otlp endpoint is required when exporter is otlp")
		}
	default:
		return fmt.Errorf("unsupported trace exporter: %s", oc.Tracing.Exporter)
	}

	if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}

	return nil
}

func (sc *StubConfig) Validate() error {
	if sc.Port <= 0 || sc.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if sc.Host == "" {
		return errors.New("host cannot be empty")
	}

	if sc.FailStatus != 0 && (sc.FailStatus < 400 || sc.FailStatus > 599) {
		return fmt.Errorf("invalid fail status: %d", sc.FailStatus)
	}

	if sc.ReadTimeout < 0 || sc.WriteTimeout < 0 {
		return errors.New("timeouts cannot be negative")
	}

	return nil
}
