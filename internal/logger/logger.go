// Package logger configures log/slog for the verify-commit binaries.
// Logs default to stderr so that stdout carries only the verification report.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"commitverify/internal/models"
	"commitverify/internal/version"
)

// Setup creates a structured logger for the named component. It returns the
// logger, an io.Closer for file output (nil for stdout/stderr) and any error.
//
// The caller is responsible for closing the returned Closer when non-nil.
func Setup(cfg models.LoggingConfig, ver version.Info, component string) (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	writer, closer, err := openWriter(cfg.Output, cfg.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log output: %w", err)
	}

	return New(writer, cfg.Format, level).With(
		slog.String("component", component),
		slog.String("version", ver.Version),
		slog.String("git_commit", ver.GitCommit),
	), closer, nil
}

// New builds a logger writing to w in the given format ("json" or text).
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a level string to an slog.Level.
// Supported values: debug, info, warn, error (case-insensitive).
func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level: %s", level)
	}
}

// openWriter returns the writer for the output setting. Anything other than
// stdout or file goes to stderr.
func openWriter(output, filePath string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil, nil
	case "file":
		if filePath == "" {
			return nil, nil, fmt.Errorf("file path is required when output is file")
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
		}
		return f, f, nil
	default:
		return os.Stderr, nil, nil
	}
}
