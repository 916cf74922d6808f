package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/cschleiden/go-resume/backend"
	"github.com/cschleiden/go-resume/backend/memory"
	"github.com/cschleiden/go-resume/backend/sfn"
	"github.com/cschleiden/go-resume/decision"
	"github.com/cschleiden/go-resume/internal/config"
	"github.com/cschleiden/go-resume/internal/logger"
	im "github.com/cschleiden/go-resume/internal/metrics"
	"github.com/cschleiden/go-resume/lifecycle"
	"github.com/cschleiden/go-resume/metrics"
	"github.com/cschleiden/go-resume/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app holds everything a command needs to handle lifecycle events.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  metrics.Client

	backend backend.Backend
	store   store.Store
	engine  *decision.Engine
	handler *lifecycle.Handler

	shutdownTracing func(context.Context) error
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}

	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	lc := logger.FromEnv()
	lc.Output = os.Stderr

	if cfg.Level != "" {
		lc.Level = cfg.Level
	}

	if cfg.Format != "" {
		lc.Format = logger.Format(cfg.Format)
	}

	if err := lc.Validate(); err != nil {
		return nil, err
	}

	return logger.New(lc), nil
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	l, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   l,
		registry: prometheus.NewRegistry(),
	}

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = im.NewPrometheusClient(a.registry, "resumer")

	tp, shutdown, err := newTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	a.shutdownTracing = shutdown

	a.backend, err = newBackend(ctx, cfg,
		backend.WithLogger(l),
		backend.WithMetrics(a.metrics),
		backend.WithTracerProvider(tp),
		backend.WithMaxHistoryEvents(cfg.Decision.MaxHistoryEvents),
	)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	a.store, err = newStore(ctx, cfg.Store, a.metrics)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	a.engine = decision.New(a.backend,
		decision.WithRunNamePrefix(cfg.Decision.RunNamePrefix),
		decision.WithMaxHistoryEvents(cfg.Decision.MaxHistoryEvents),
	)
	a.handler = lifecycle.NewHandler(a.engine, a.store, l)

	return a, nil
}

func newBackend(ctx context.Context, cfg *config.Config, opts ...backend.BackendOption) (backend.Backend, error) {
	switch cfg.Backend.Kind {
	case config.BackendMemory:
		return memory.NewMemoryBackend(memory.WithBackendOptions(opts...)), nil

	case config.BackendSfn:
		b, err := sfn.NewSfnBackendFromConfig(ctx,
			sfn.WithRegion(cfg.Backend.Region),
			sfn.WithPageSize(cfg.Backend.PageSize),
			sfn.WithBackendOptions(opts...),
		)
		if err != nil {
			return nil, fmt.Errorf("creating Step Functions backend: %w", err)
		}

		return b, nil
	}

	return nil, fmt.Errorf("unknown backend %q", cfg.Backend.Kind)
}

func (a *app) Close(ctx context.Context) error {
	return errors.Join(
		a.store.Close(),
		a.backend.Close(),
		a.shutdownTracing(ctx),
	)
}
