// Package decision decides, for a lifecycle event, whether to start a new execution of a workflow,
// resume the last one from its failure point, or leave it alone.
package decision

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-resume/backend"
	"github.com/cschleiden/go-resume/continuation"
	"github.com/cschleiden/go-resume/core"
	"github.com/cschleiden/go-resume/internal/metrickeys"
	im "github.com/cschleiden/go-resume/internal/metrics"
	"github.com/cschleiden/go-resume/internal/tracing"
	"github.com/cschleiden/go-resume/log"
	"github.com/cschleiden/go-resume/metrics"
	"github.com/cschleiden/go-resume/payload"
	goerrors "github.com/go-errors/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrListExecutions = errors.New("listing executions")
	ErrGetHistory     = errors.New("getting execution history")
	ErrStartExecution = errors.New("starting execution")
)

// Engine makes resume decisions. It holds no state besides its configuration and can be used for
// different workflows concurrently. Decisions for the same workflow must not overlap.
type Engine struct {
	backend backend.Backend
	options options
}

func New(b backend.Backend, opts ...Option) *Engine {
	o := options{
		clock:         clock.New(),
		runNamePrefix: DefaultRunNamePrefix,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.maxHistoryEvents <= 0 {
		o.maxHistoryEvents = b.Options().MaxHistoryEvents
	}

	if o.runNamePrefix == "" {
		o.runNamePrefix = DefaultRunNamePrefix
	}

	return &Engine{
		backend: b,
		options: o,
	}
}

// Decide evaluates the request against the last execution of the workflow and starts a new one if
// needed. It never returns nil; errors from the workflow engine are reported through the result.
func (e *Engine) Decide(ctx context.Context, r Request) *Result {
	ctx, span := e.backend.Tracer().Start(ctx, "Decide", trace.WithAttributes(
		attribute.String(tracing.WorkflowID, r.WorkflowID),
		attribute.String(tracing.RequestKind, r.Kind.String()),
		attribute.String(tracing.RequestID, r.RequestID),
	))
	defer span.End()

	timer := im.NewTimer(e.backend.Metrics(), e.options.clock, metrickeys.DecisionDuration, metrics.Tags{})
	defer timer.Stop()

	res := e.decide(ctx, r)

	span.SetAttributes(
		attribute.String(tracing.DecisionStatus, string(res.Status)),
		attribute.String(tracing.DecisionAction, res.Action.String()),
	)
	tracing.WithSpanError(span, res.Err)

	e.backend.Metrics().Counter(metrickeys.Decision, metrics.Tags{
		metrickeys.Status: string(res.Status),
		metrickeys.Action: res.Action.String(),
	}, 1)

	args := []any{
		log.WorkflowIDKey, r.WorkflowID,
		log.RequestKindKey, r.Kind.String(),
		log.RequestIDKey, r.RequestID,
		log.ActionKey, res.Action.String(),
		log.StatusKey, string(res.Status),
		log.ExecutionHandleKey, res.LastExecutionHandle,
	}
	if res.Continuation != nil {
		args = append(args,
			log.FailedStateKey, res.Continuation.FailedState,
			log.SucceededStateKey, res.Continuation.SucceededState,
		)
	}
	e.backend.Logger().Info("Decided", args...)

	return res
}

func (e *Engine) decide(ctx context.Context, r Request) *Result {
	res := &Result{Action: ActionNone}

	if r.Kind == KindDelete {
		return res
	}

	manual := e.manualInput(r)

	executions, err := e.listExecutions(ctx, r.WorkflowID)
	if err != nil {
		res.Status = StatusListError
		res.Err = fmt.Errorf("%w: %w", ErrListExecutions, err)
		e.logError("Could not list executions", res.Err, log.WorkflowIDKey, r.WorkflowID)
		return res
	}

	var last *core.Execution
	if len(executions) > 0 {
		last = executions[0]

		res.Status = executionStatus(last.Status)
		res.LastExecutionHandle = last.Handle
		res.LastExecutionStartTime = last.StartedAt

		c, err := e.analyze(ctx, last, r.TargetState)
		if err != nil {
			res.Status = StatusHistoryError
			res.Err = fmt.Errorf("%w: %w", ErrGetHistory, err)
			e.logError("Could not get execution history", res.Err, log.ExecutionHandleKey, last.Handle)
			return res
		}

		if manual != nil {
			c.ResumeInput = manual
		}

		res.Continuation = &c
	}

	switch {
	case r.Kind == KindCreate && !e.options.clock.Now().Before(r.ScheduledStartTime):
		return e.start(ctx, r, res, manual)

	case r.Kind == KindCreate:
		// Not due yet, a later update starts the first run.
		return res

	case manual != nil:
		return e.start(ctx, r, res, manual)

	case last == nil:
		return e.start(ctx, r, res, nil)

	case r.TargetState != "" && last.Status != core.ExecutionStatusRunning:
		return e.start(ctx, r, res, res.Continuation.ResumeInput)

	case last.Status.Failed() && res.Continuation != nil:
		return e.start(ctx, r, res, res.Continuation.ResumeInput)
	}

	return res
}

// manualInput returns the parsed manual input, or nil if there is none or it cannot be used.
func (e *Engine) manualInput(r Request) payload.Payload {
	if r.ManualInput.Empty() {
		return nil
	}

	p, err := payload.Parse(r.ManualInput)
	if err != nil {
		e.backend.Logger().Warn("Ignoring manual input",
			log.WorkflowIDKey, r.WorkflowID,
			log.ErrorKey, &ParseError{Err: err},
		)
		return nil
	}

	return p
}

func (e *Engine) listExecutions(ctx context.Context, workflowID string) ([]*core.Execution, error) {
	ctx, span := e.backend.Tracer().Start(ctx, "ListExecutions", trace.WithAttributes(
		attribute.String(tracing.WorkflowID, workflowID),
	))
	defer span.End()

	executions, err := e.backend.ListExecutions(ctx, workflowID, 1)
	return executions, tracing.WithSpanError(span, err)
}

// analyze reads the history of the given execution and derives its continuation. Only errors from
// the workflow engine are returned, malformed recorded input is logged and a fallback used.
func (e *Engine) analyze(ctx context.Context, last *core.Execution, targetState string) (continuation.Continuation, error) {
	ctx, span := e.backend.Tracer().Start(ctx, "GetExecutionHistory", trace.WithAttributes(
		attribute.String(tracing.ExecutionHandle, last.Handle),
	))
	defer span.End()

	events, err := e.backend.GetExecutionHistory(ctx, last.Handle, e.options.maxHistoryEvents, true)
	if err != nil {
		return continuation.Continuation{}, tracing.WithSpanError(span, err)
	}

	span.SetAttributes(attribute.Int(tracing.HistoryEvents, len(events)))

	var opts []continuation.Option
	if targetState != "" {
		opts = append(opts, continuation.WithTargetState(targetState))
	}

	c, err := continuation.Analyze(events, opts...)
	if err != nil {
		e.backend.Logger().Warn("Using fallback input",
			log.ExecutionHandleKey, last.Handle,
			log.ErrorKey, err,
		)
	}

	e.backend.Logger().Debug("Analyzed execution history",
		log.ExecutionHandleKey, last.Handle,
		log.EventCountKey, len(events),
		log.FailedStateKey, c.FailedState,
		log.SucceededStateKey, c.SucceededState,
	)

	return c, nil
}

func (e *Engine) start(ctx context.Context, r Request, res *Result, input payload.Payload) *Result {
	input, err := payload.EnsureResumeTo(input)
	if err != nil {
		input = payload.Default("")
	}

	requestID := r.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	name := runName(e.options.runNamePrefix, requestID, e.options.clock.Now())

	ctx, span := e.backend.Tracer().Start(ctx, "StartExecution", trace.WithAttributes(
		attribute.String(tracing.WorkflowID, r.WorkflowID),
		attribute.String(tracing.ExecutionName, name),
	))
	defer span.End()

	res.StartedInput = input

	ex, err := e.backend.StartExecution(ctx, r.WorkflowID, name, input)
	if err != nil {
		tracing.WithSpanError(span, err)

		res.Status = StatusStartFailed
		res.Err = fmt.Errorf("%w: %w", ErrStartExecution, err)
		e.logError("Could not start execution", res.Err,
			log.WorkflowIDKey, r.WorkflowID,
			log.ExecutionNameKey, name,
		)
		return res
	}

	res.Action = ActionStart
	res.Status = StatusExecutionStarted
	res.LastExecutionHandle = ex.Handle
	res.LastExecutionStartTime = ex.StartedAt
	if res.LastExecutionStartTime.IsZero() {
		res.LastExecutionStartTime = e.options.clock.Now()
	}

	resumeTo, _ := payload.ResumeTo(input)
	e.backend.Logger().Info("Started execution",
		log.WorkflowIDKey, r.WorkflowID,
		log.ExecutionHandleKey, ex.Handle,
		log.ExecutionNameKey, name,
		log.ResumeToKey, resumeTo,
	)

	return res
}

func (e *Engine) logError(msg string, err error, args ...any) {
	args = append(args,
		log.ErrorKey, err,
		log.StackKey, string(goerrors.New(err).Stack()),
	)

	e.backend.Logger().Error(msg, args...)
}
