package backend

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/cschleiden/go-resume/core"
	"github.com/cschleiden/go-resume/history"
	"github.com/cschleiden/go-resume/metrics"
	"github.com/cschleiden/go-resume/payload"
)

var (
	ErrExecutionNotFound      = errors.New("execution not found")
	ErrExecutionAlreadyExists = errors.New("execution already exists")
	ErrWorkflowNotFound       = errors.New("workflow not found")
)

const TracerName = "go-resume"

// Backend is the client of the workflow engine that runs the executions.
//
//go:generate mockery --name=Backend --inpackage
type Backend interface {
	// ListExecutions returns up to limit executions of the given workflow, most recently started first
	ListExecutions(ctx context.Context, workflowID string, limit int) ([]*core.Execution, error)

	// GetExecutionHistory returns up to maxEvents events of the given execution. When mostRecentFirst
	// is set, the latest event is returned first.
	GetExecutionHistory(ctx context.Context, handle string, maxEvents int, mostRecentFirst bool) ([]*history.Event, error)

	// StartExecution starts a new execution of the given workflow. Run names are unique per workflow,
	// starting a second execution with the same name returns ErrExecutionAlreadyExists.
	StartExecution(ctx context.Context, workflowID string, name string, input payload.Payload) (*core.Execution, error)

	// Logger returns the configured logger for the backend
	Logger() *slog.Logger

	// Tracer returns the configured trace provider for the backend
	Tracer() trace.Tracer

	// Metrics returns the configured metrics client for the backend
	Metrics() metrics.Client

	// Options returns the configured options for the backend
	Options() *Options

	// Close closes any underlying resources
	Close() error
}
