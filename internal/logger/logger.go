// Package logger builds the slog logger used by the resumer binary.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type Config struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// Format defaults to json, which is what Lambda log ingestion expects.
	Format Format

	// Output defaults to os.Stderr.
	Output io.Writer

	AddSource bool
}

func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: FormatJSON,
		Output: os.Stderr,
	}
}

// FromEnv creates a Config from environment variables:
//   - RESUMER_DEBUG: true or 1 enables debug level and source locations, and wins over the level variables
//   - RESUMER_LOG_LEVEL: takes precedence over LOG_LEVEL
//   - LOG_LEVEL: debug, info, warn, error
//   - LOG_FORMAT: json, text
func FromEnv() *Config {
	cfg := DefaultConfig()

	debug := os.Getenv("RESUMER_DEBUG")
	if debug == "true" || debug == "1" {
		cfg.Level = "debug"
		cfg.AddSource = true
	} else if level := os.Getenv("RESUMER_LOG_LEVEL"); level != "" {
		cfg.Level = strings.ToLower(level)
	} else if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = strings.ToLower(level)
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}

	return cfg
}

// Validate returns an error for unknown levels or formats.
func (c *Config) Validate() error {
	if _, ok := parseLevel(c.Level); !ok {
		return fmt.Errorf("unknown log level %q", c.Level)
	}

	switch c.Format {
	case "", FormatJSON, FormatText:
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}

	return nil
}

func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level, _ := parseLevel(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
