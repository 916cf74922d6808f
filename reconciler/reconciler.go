// Package reconciler periodically re-sends update events for a set of resources, so failed workflow
// executions are resumed without waiting for the next deployment.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cschleiden/go-resume/decision"
	"github.com/cschleiden/go-resume/internal/metrickeys"
	"github.com/cschleiden/go-resume/lifecycle"
	"github.com/cschleiden/go-resume/log"
	"github.com/cschleiden/go-resume/metrics"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ErrStatus is returned when an update reported an error status after all retries.
var ErrStatus = errors.New("update reported an error status")

type Handler interface {
	Handle(ctx context.Context, r lifecycle.Request) (*lifecycle.Response, error)
}

var _ Handler = (*lifecycle.Handler)(nil)

// Target is a resource to keep updating.
type Target struct {
	PhysicalID string

	Properties map[string]any
}

type Reconciler struct {
	handler Handler
	targets []Target
	options Options
	limiter *rate.Limiter

	wg sync.WaitGroup
}

func New(h Handler, targets []Target, opts ...Option) *Reconciler {
	r := &Reconciler{
		handler: h,
		targets: targets,
		options: applyOptions(opts...),
	}

	for _, t := range targets {
		for _, k := range manualProperties {
			if _, ok := t.Properties[k]; ok {
				r.options.Logger.Warn("Ignoring property of reconciled resource",
					log.PhysicalIDKey, t.PhysicalID,
					log.PropertyKey, k,
				)
			}
		}
	}

	if r.options.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(r.options.RateLimit), 1)
	}

	return r
}

// Start updates every target right away and then once per interval, until ctx is canceled.
func (r *Reconciler) Start(ctx context.Context) error {
	r.wg.Add(len(r.targets))

	for _, t := range r.targets {
		go r.run(ctx, t)
	}

	return nil
}

// WaitForCompletion blocks until all targets have stopped. Cancel the context passed to Start first.
func (r *Reconciler) WaitForCompletion() error {
	r.wg.Wait()

	return nil
}

func (r *Reconciler) run(ctx context.Context, t Target) {
	defer r.wg.Done()

	ticker := r.options.Clock.Ticker(r.options.Interval)
	defer ticker.Stop()

	for {
		if _, err := r.Reconcile(ctx, t); err != nil && ctx.Err() == nil {
			r.options.Logger.ErrorContext(ctx, "Could not reconcile resource",
				log.PhysicalIDKey, t.PhysicalID,
				log.ErrorKey, err,
			)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Reconcile sends a single update for the target. Updates reporting an error status are retried with
// exponential backoff; invalid properties are not retried. Properties that force a new execution are
// not sent, so a running execution is never overlapped.
func (r *Reconciler) Reconcile(ctx context.Context, t Target) (*lifecycle.Response, error) {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     r.options.InitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         r.options.MaxInterval,
		MaxElapsedTime:      r.options.MaxElapsedTime,
		Stop:                backoff.Stop,
		Clock:               r.options.Clock,
	}
	b.Reset()

	properties := updateProperties(t.Properties)

	attempt := 0

	var resp *lifecycle.Response
	op := func() error {
		attempt++

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		var err error
		resp, err = r.handler.Handle(ctx, lifecycle.Request{
			Kind:               decision.KindUpdate,
			RequestID:          uuid.NewString(),
			PhysicalResourceID: t.PhysicalID,
			Properties:         properties,
		})

		status := ""
		if resp != nil {
			status = resp.Data[lifecycle.AttrCurrentStatus]
		}

		r.options.Metrics.Counter(metrickeys.ReconcileAttempt, metrics.Tags{
			metrickeys.Status: status,
		}, 1)

		if err != nil {
			if errors.Is(err, lifecycle.ErrInvalidProperties) {
				return backoff.Permanent(err)
			}

			return err
		}

		if decision.Status(status).IsError() {
			return fmt.Errorf("%w: %s", ErrStatus, status)
		}

		return nil
	}

	notify := func(err error, d time.Duration) {
		r.options.Logger.WarnContext(ctx, "Retrying update",
			log.PhysicalIDKey, t.PhysicalID,
			log.AttemptKey, attempt,
			log.DurationKey, d.Milliseconds(),
			log.ErrorKey, err,
		)
	}

	err := backoff.RetryNotifyWithTimer(op, backoff.WithContext(b, ctx), notify, &clockTimer{clock: r.options.Clock})

	return resp, err
}

// manualProperties always start a new execution when present in an update.
var manualProperties = []string{lifecycle.PropExecInput, lifecycle.PropResumeFrom}

func updateProperties(props map[string]any) map[string]any {
	r := make(map[string]any, len(props))
	for k, v := range props {
		r[k] = v
	}

	for _, k := range manualProperties {
		delete(r, k)
	}

	return r
}
