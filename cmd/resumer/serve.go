package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cschleiden/go-resume/diag"
	"github.com/cschleiden/go-resume/log"
	"github.com/cschleiden/go-resume/reconciler"
	"github.com/spf13/cobra"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve diagnostics and keep the configured resources reconciled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rc := a.cfg.Reconciler

	targets := make([]reconciler.Target, 0, len(rc.Targets))
	for _, t := range rc.Targets {
		targets = append(targets, reconciler.Target{PhysicalID: t.PhysicalID, Properties: t.Properties})
	}

	r := reconciler.New(a.handler, targets,
		reconciler.WithInterval(rc.Interval),
		reconciler.WithBackoff(rc.InitialInterval, rc.MaxInterval, rc.MaxElapsedTime),
		reconciler.WithRateLimit(rc.RateLimit),
		reconciler.WithLogger(a.logger),
		reconciler.WithMetrics(a.metrics),
	)

	if err := r.Start(ctx); err != nil {
		return err
	}

	var srv *http.Server
	errs := make(chan error, 1)

	if a.cfg.Diag.Addr != "" {
		opts := []diag.Option{diag.WithBackend(a.backend)}
		if a.cfg.Diag.Metrics {
			opts = append(opts, diag.WithGatherer(a.registry))
		}

		srv = &http.Server{
			Addr:              a.cfg.Diag.Addr,
			Handler:           diag.NewServeMux(a.store, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			a.logger.Info("Serving diagnostics", "addr", a.cfg.Diag.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errs:
		a.logger.Error("Diagnostics server failed", log.ErrorKey, err)
	}

	cancel()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			a.logger.Warn("Could not shut down diagnostics server", log.ErrorKey, serr)
		}
	}

	return errors.Join(err, r.WaitForCompletion())
}
