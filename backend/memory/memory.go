// Package memory provides a workflow engine that keeps executions and their histories in memory.
// Executions never progress on their own; tests and local runs drive them with AppendEvents and
// SetStatus.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-resume/backend"
	"github.com/cschleiden/go-resume/core"
	"github.com/cschleiden/go-resume/history"
	"github.com/cschleiden/go-resume/internal/metrickeys"
	"github.com/cschleiden/go-resume/log"
	"github.com/cschleiden/go-resume/metrics"
	"github.com/cschleiden/go-resume/payload"
	"go.opentelemetry.io/otel/trace"
)

type execution struct {
	e *core.Execution

	// events are stored oldest first
	events []*history.Event
}

type Backend struct {
	mu sync.Mutex

	options options

	// executions per workflow, in the order they were started
	workflows  map[string][]*execution
	executions map[string]*execution
}

var _ backend.Backend = (*Backend)(nil)

func NewMemoryBackend(opts ...option) *Backend {
	o := options{
		Options: backend.ApplyOptions(),
		Clock:   clock.New(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return &Backend{
		options:    o,
		workflows:  make(map[string][]*execution),
		executions: make(map[string]*execution),
	}
}

func handle(workflowID, name string) string {
	return fmt.Sprintf("arn:memory:execution:%s:%s", workflowID, name)
}

func (b *Backend) ListExecutions(ctx context.Context, workflowID string, limit int) ([]*core.Execution, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	executions := b.workflows[workflowID]

	r := make([]*core.Execution, 0)
	for i := len(executions) - 1; i >= 0; i-- {
		if limit > 0 && len(r) >= limit {
			break
		}

		e := *executions[i].e
		r = append(r, &e)
	}

	return r, nil
}

func (b *Backend) GetExecutionHistory(ctx context.Context, handle string, maxEvents int, mostRecentFirst bool) ([]*history.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ex, ok := b.executions[handle]
	if !ok {
		return nil, backend.ErrExecutionNotFound
	}

	events := make([]*history.Event, len(ex.events))
	copy(events, ex.events)

	if mostRecentFirst {
		events = history.Reverse(events)
	}

	if maxEvents > 0 && len(events) > maxEvents {
		events = events[:maxEvents]
	}

	return events, nil
}

func (b *Backend) StartExecution(ctx context.Context, workflowID string, name string, input payload.Payload) (*core.Execution, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := handle(workflowID, name)
	if _, ok := b.executions[h]; ok {
		return nil, backend.ErrExecutionAlreadyExists
	}

	now := b.options.Clock.Now()

	e := core.NewExecution(workflowID, h, name, core.ExecutionStatusRunning, now)
	e.Input = input

	ex := &execution{
		e: e,
		events: []*history.Event{
			history.NewHistoryEvent(1, now, history.EventType_Other, nil, history.SourceType("ExecutionStarted")),
		},
	}

	b.workflows[workflowID] = append(b.workflows[workflowID], ex)
	b.executions[h] = ex

	b.options.Logger.Debug("started execution",
		log.WorkflowIDKey, workflowID,
		log.ExecutionHandleKey, h,
		log.ExecutionNameKey, name,
	)

	r := *e
	return &r, nil
}

// AddExecution records an execution with the given status and history, given oldest event first.
// Events without an id or timestamp get one assigned.
func (b *Backend) AddExecution(workflowID, name string, status core.ExecutionStatus, input payload.Payload, events ...*history.Event) (*core.Execution, error) {
	e, err := b.StartExecution(context.Background(), workflowID, name, input)
	if err != nil {
		return nil, err
	}

	if err := b.AppendEvents(e.Handle, events...); err != nil {
		return nil, err
	}

	if err := b.SetStatus(e.Handle, status); err != nil {
		return nil, err
	}

	e.Status = status

	return e, nil
}

// AppendEvents adds events to the end of an execution's history.
func (b *Backend) AppendEvents(handle string, events ...*history.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ex, ok := b.executions[handle]
	if !ok {
		return backend.ErrExecutionNotFound
	}

	for _, event := range events {
		if event.ID == 0 {
			event.ID = int64(len(ex.events) + 1)
		}

		if event.Timestamp.IsZero() {
			event.Timestamp = b.options.Clock.Now()
		}

		ex.events = append(ex.events, event)
	}

	return nil
}

// SetStatus changes the status of an execution.
func (b *Backend) SetStatus(handle string, status core.ExecutionStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ex, ok := b.executions[handle]
	if !ok {
		return backend.ErrExecutionNotFound
	}

	ex.e.Status = status

	return nil
}

func (b *Backend) Logger() *slog.Logger {
	return b.options.Logger
}

func (b *Backend) Tracer() trace.Tracer {
	return b.options.TracerProvider.Tracer(backend.TracerName)
}

func (b *Backend) Metrics() metrics.Client {
	return b.options.Metrics.WithTags(metrics.Tags{metrickeys.Backend: "memory"})
}

func (b *Backend) Options() *backend.Options {
	return &b.options.Options
}

func (b *Backend) Close() error {
	return nil
}
