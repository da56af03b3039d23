package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"commitverify/internal/models"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COMMITVERIFY_"

// Load loads configuration from file and environment variables
func Load(configPath string) (*models.Config, error) {
	// Start with default configuration
	config := models.NewDefaultConfig()

	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Override with environment variables
	loadFromEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment. Variables already set are not overridden.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// loadFromFile decodes a YAML or TOML file, chosen by extension.
func loadFromFile(config *models.Config, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", filePath)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".toml":
		if _, err := toml.DecodeFile(filePath, config); err != nil {
			return fmt.Errorf("failed to parse TOML config: %w", err)
		}
	case ".yaml", ".yml", "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file extension: %s", filepath.Ext(filePath))
	}
	return nil
}

func env(name string) string {
	return os.Getenv(EnvPrefix + name)
}

// loadFromEnvironment applies COMMITVERIFY_* overrides. Unparseable values
// are ignored.
func loadFromEnvironment(config *models.Config) {
	// Verifier configuration
	if timeout := env("TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Verifier.Timeout = d
		}
	}

	if mode := env("MATCH_MODE"); mode != "" {
		config.Verifier.MatchMode = strings.ToLower(mode)
	}

	if ua := env("USER_AGENT"); ua != "" {
		config.Verifier.UserAgent = ua
	}

	if maxBody := env("MAX_BODY_BYTES"); maxBody != "" {
		if n, err := strconv.ParseInt(maxBody, 10, 64); err == nil {
			config.Verifier.MaxBodyBytes = n
		}
	}

	// History configuration
	if enabled := env("HISTORY_ENABLED"); enabled != "" {
		config.History.Enabled = strings.ToLower(enabled) == "true"
	}

	if storageType := env("HISTORY_TYPE"); storageType != "" {
		config.History.Type = storageType
	}

	if path := env("HISTORY_PATH"); path != "" {
		config.History.Path = path
	}

	if dsn := env("HISTORY_DSN"); dsn != "" {
		config.History.DSN = dsn
	}

	// Logging configuration
	if level := env("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if format := env("LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if output := env("LOG_OUTPUT"); output != "" {
		config.Logging.Output = output
	}

	if filePath := env("LOG_FILE_PATH"); filePath != "" {
		config.Logging.FilePath = filePath
	}

	// Metrics configuration
	if metrics := env("METRICS_ENABLED"); metrics != "" {
		config.Metrics.Enabled = strings.ToLower(metrics) == "true"
	}

	if gateway := env("PUSHGATEWAY_URL"); gateway != "" {
		config.Metrics.PushgatewayURL = gateway
	}

	if job := env("METRICS_JOB"); job != "" {
		config.Metrics.Job = job
	}

	if path := env("METRICS_PATH"); path != "" {
		config.Metrics.Path = path
	}

	if port := env("METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Metrics.Port = p
		}
	}

	// Tracing configuration
	if name := env("SERVICE_NAME"); name != "" {
		config.Observability.ServiceName = name
	}

	if tracing := env("TRACING_ENABLED"); tracing != "" {
		config.Observability.Tracing.Enabled = strings.ToLower(tracing) == "true"
	}

	if exporter := env("TRACING_EXPORTER"); exporter != "" {
		config.Observability.Tracing.Exporter = exporter
	}

	if endpoint := env("OTLP_ENDPOINT"); endpoint != "" {
		config.Observability.Tracing.OTLPEndpoint = endpoint
	}

	if rate := env("TRACING_SAMPLE_RATE"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil {
			config.Observability.Tracing.SampleRate = r
		}
	}

	// Stub configuration
	if host := env("STUB_HOST"); host != "" {
		config.Stub.Host = host
	}

	if port := env("STUB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Stub.Port = p
		}
	}

	if commit := env("STUB_COMMIT"); commit != "" {
		config.Stub.Commit = commit
	}

	if healthy := env("STUB_HEALTHY"); healthy != "" {
		config.Stub.Healthy = strings.ToLower(healthy) == "true"
	}

	if conn := env("STUB_CONNECTION_STATUS"); conn != "" {
		config.Stub.ConnectionStatus = strings.ToLower(conn) == "true"
	}

	if status := env("STUB_FAIL_STATUS"); status != "" {
		if s, err := strconv.Atoi(status); err == nil {
			config.Stub.FailStatus = s
		}
	}
}

// SaveExample writes an example YAML configuration file.
func SaveExample(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	config := models.NewDefaultConfig()
	config.History.Enabled = true
	config.History.Type = models.StorageTypeSQLite
	config.History.DSN = "file:./data/verifications.db"
	config.Metrics.PushgatewayURL = "http://pushgateway:9091"

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
