// Package config loads the resumer process configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	BackendSfn    = "sfn"
	BackendMemory = "memory"

	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Backend    BackendConfig    `yaml:"backend"`
	Decision   DecisionConfig   `yaml:"decision"`
	Store      StoreConfig      `yaml:"store"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Diag       DiagConfig       `yaml:"diag"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
}

// LogConfig overrides the logger configuration read from LOG_LEVEL and LOG_FORMAT.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is json or text.
	Format string `yaml:"format,omitempty"`
}

type BackendConfig struct {
	// Kind selects the workflow engine, sfn or memory.
	// Environment: RESUMER_BACKEND
	Kind string `yaml:"kind,omitempty"`

	// Region overrides the AWS region from the environment.
	// Environment: RESUMER_REGION
	Region string `yaml:"region,omitempty"`

	// PageSize is the number of history events requested per call.
	PageSize int32 `yaml:"page_size,omitempty"`
}

type DecisionConfig struct {
	// RunNamePrefix is prepended to the names of started executions.
	// Environment: RESUMER_RUN_NAME_PREFIX
	RunNamePrefix string `yaml:"run_name_prefix,omitempty"`

	// MaxHistoryEvents limits the number of history events analyzed per decision.
	MaxHistoryEvents int `yaml:"max_history_events,omitempty"`
}

type StoreConfig struct {
	// DSN selects the attribute store: memory, sqlite://path, mysql://dsn, or redis://addr.
	// Environment: RESUMER_STORE_DSN
	DSN string `yaml:"dsn,omitempty"`

	Cache CacheConfig `yaml:"cache,omitempty"`
}

type CacheConfig struct {
	// Size is the maximum number of cached records. Zero disables the cache.
	// Environment: RESUMER_CACHE_SIZE
	Size uint64 `yaml:"size,omitempty"`

	// Environment: RESUMER_CACHE_TTL
	TTL time.Duration `yaml:"ttl,omitempty"`
}

type TracingConfig struct {
	// Exporter is none, stdout, or otlp.
	// Environment: RESUMER_TRACING_EXPORTER
	Exporter string `yaml:"exporter,omitempty"`

	// Endpoint of the OTLP HTTP collector.
	// Environment: RESUMER_OTLP_ENDPOINT
	Endpoint string `yaml:"endpoint,omitempty"`

	ServiceName string `yaml:"service_name,omitempty"`
}

type DiagConfig struct {
	// Addr the diagnostics server listens on. Empty disables it.
	// Environment: RESUMER_DIAG_ADDR
	Addr string `yaml:"addr,omitempty"`

	// Metrics serves Prometheus metrics at /metrics.
	Metrics bool `yaml:"metrics"`
}

type ReconcilerConfig struct {
	// Environment: RESUMER_RECONCILE_INTERVAL
	Interval time.Duration `yaml:"interval,omitempty"`

	InitialInterval time.Duration `yaml:"initial_interval,omitempty"`
	MaxInterval     time.Duration `yaml:"max_interval,omitempty"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time,omitempty"`

	// RateLimit is the maximum number of updates per second across all targets. Zero is unlimited.
	RateLimit float64 `yaml:"rate_limit,omitempty"`

	Targets []TargetConfig `yaml:"targets,omitempty"`
}

type TargetConfig struct {
	PhysicalID string `yaml:"physical_id"`

	// Properties are sent with every update, like the properties of a custom resource.
	Properties map[string]any `yaml:"properties"`
}

func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Kind:     BackendSfn,
			PageSize: 1000,
		},
		Decision: DecisionConfig{
			RunNamePrefix:    "ResumeManager",
			MaxHistoryEvents: 1000,
		},
		Store: StoreConfig{
			DSN: "memory",
			Cache: CacheConfig{
				TTL: 5 * time.Minute,
			},
		},
		Tracing: TracingConfig{
			Exporter:    ExporterNone,
			ServiceName: "resumer",
		},
		Diag: DiagConfig{
			Addr: ":8080",
		},
		Reconciler: ReconcilerConfig{
			Interval:        5 * time.Minute,
			InitialInterval: time.Second,
			MaxInterval:     30 * time.Second,
			MaxElapsedTime:  2 * time.Minute,
		},
	}
}

// Load reads the configuration from configPath, if not empty, on top of the defaults. Environment
// variables take precedence over the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	return nil
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("RESUMER_LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("RESUMER_LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}

	if val := os.Getenv("RESUMER_BACKEND"); val != "" {
		c.Backend.Kind = strings.ToLower(val)
	}
	if val := os.Getenv("RESUMER_REGION"); val != "" {
		c.Backend.Region = val
	}

	if val := os.Getenv("RESUMER_RUN_NAME_PREFIX"); val != "" {
		c.Decision.RunNamePrefix = val
	}

	if val := os.Getenv("RESUMER_STORE_DSN"); val != "" {
		c.Store.DSN = val
	}
	if val := os.Getenv("RESUMER_CACHE_SIZE"); val != "" {
		if size, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.Store.Cache.Size = size
		}
	}
	if val := os.Getenv("RESUMER_CACHE_TTL"); val != "" {
		if ttl, err := time.ParseDuration(val); err == nil {
			c.Store.Cache.TTL = ttl
		}
	}

	if val := os.Getenv("RESUMER_TRACING_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("RESUMER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}

	if val, ok := os.LookupEnv("RESUMER_DIAG_ADDR"); ok {
		c.Diag.Addr = val
	}

	if val := os.Getenv("RESUMER_RECONCILE_INTERVAL"); val != "" {
		if interval, err := time.ParseDuration(val); err == nil {
			c.Reconciler.Interval = interval
		}
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Backend.Kind {
	case BackendSfn, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("backend.kind: unknown backend %q", c.Backend.Kind))
	}

	if _, _, err := c.Store.Parse(); err != nil {
		errs = append(errs, fmt.Errorf("store.dsn: %w", err))
	}

	switch c.Tracing.Exporter {
	case "", ExporterNone, ExporterStdout, ExporterOTLP:
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter: unknown exporter %q", c.Tracing.Exporter))
	}

	if c.Reconciler.Interval < 0 {
		errs = append(errs, errors.New("reconciler.interval: must not be negative"))
	}

	if c.Reconciler.RateLimit < 0 {
		errs = append(errs, errors.New("reconciler.rate_limit: must not be negative"))
	}

	for i, t := range c.Reconciler.Targets {
		if t.PhysicalID == "" {
			errs = append(errs, fmt.Errorf("reconciler.targets[%d]: missing physical_id", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// Store kinds
const (
	StoreMemory = "memory"
	StoreSqlite = "sqlite"
	StoreMySQL  = "mysql"
	StoreRedis  = "redis"
)

// Parse splits the store DSN into its kind and the driver specific remainder.
func (s StoreConfig) Parse() (kind string, rest string, err error) {
	if s.DSN == "" || s.DSN == StoreMemory {
		return StoreMemory, "", nil
	}

	kind, rest, ok := strings.Cut(s.DSN, "://")
	if !ok {
		return "", "", fmt.Errorf("expected <kind>://<dsn>, got %q", s.DSN)
	}

	switch kind {
	case StoreSqlite, StoreMySQL, StoreRedis:
	default:
		return "", "", fmt.Errorf("unknown store %q", kind)
	}

	if rest == "" {
		return "", "", fmt.Errorf("missing %s connection string", kind)
	}

	return kind, rest, nil
}
