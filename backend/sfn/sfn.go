// Package sfn implements the workflow engine client on AWS Step Functions. Workflow ids are state
// machine ARNs, execution handles are execution ARNs.
package sfn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	sdk "github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/cschleiden/go-resume/backend"
	"github.com/cschleiden/go-resume/core"
	"github.com/cschleiden/go-resume/history"
	"github.com/cschleiden/go-resume/internal/metrickeys"
	"github.com/cschleiden/go-resume/log"
	"github.com/cschleiden/go-resume/metrics"
	"github.com/cschleiden/go-resume/payload"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// API is the subset of the Step Functions client used by the backend.
type API interface {
	ListExecutions(ctx context.Context, params *sdk.ListExecutionsInput, optFns ...func(*sdk.Options)) (*sdk.ListExecutionsOutput, error)
	GetExecutionHistory(ctx context.Context, params *sdk.GetExecutionHistoryInput, optFns ...func(*sdk.Options)) (*sdk.GetExecutionHistoryOutput, error)
	StartExecution(ctx context.Context, params *sdk.StartExecutionInput, optFns ...func(*sdk.Options)) (*sdk.StartExecutionOutput, error)
}

var _ API = (*sdk.Client)(nil)

type sfnBackend struct {
	api     API
	options Options
}

var _ backend.Backend = (*sfnBackend)(nil)

// NewSfnBackend creates a backend for the given Step Functions client.
func NewSfnBackend(api API, opts ...Option) backend.Backend {
	options := DefaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.PageSize <= 0 || options.PageSize > 1000 {
		options.PageSize = DefaultOptions.PageSize
	}

	return &sfnBackend{
		api:     api,
		options: options,
	}
}

// NewSfnBackendFromConfig creates a backend with credentials and region resolved from the default AWS
// configuration chain.
func NewSfnBackendFromConfig(ctx context.Context, opts ...Option) (backend.Backend, error) {
	options := DefaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	var loadOpts []func(*config.LoadOptions) error
	if options.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(options.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	return NewSfnBackend(sdk.NewFromConfig(cfg), opts...), nil
}

func (b *sfnBackend) ListExecutions(ctx context.Context, workflowID string, limit int) ([]*core.Execution, error) {
	ctx, span := b.Tracer().Start(ctx, "ListExecutions", trace.WithAttributes(
		attribute.String(log.WorkflowIDKey, workflowID),
	))
	defer span.End()

	b.countCall("ListExecutions")

	input := &sdk.ListExecutionsInput{
		StateMachineArn: aws.String(workflowID),
	}
	if limit > 0 {
		input.MaxResults = int32(limit)
	}

	out, err := b.api.ListExecutions(ctx, input)
	if err != nil {
		return nil, b.mapError("ListExecutions", err)
	}

	executions := make([]*core.Execution, 0, len(out.Executions))
	for _, item := range out.Executions {
		if limit > 0 && len(executions) >= limit {
			break
		}

		executions = append(executions, toExecution(workflowID, item))
	}

	return executions, nil
}

func (b *sfnBackend) GetExecutionHistory(ctx context.Context, handle string, maxEvents int, mostRecentFirst bool) ([]*history.Event, error) {
	ctx, span := b.Tracer().Start(ctx, "GetExecutionHistory", trace.WithAttributes(
		attribute.String(log.ExecutionHandleKey, handle),
	))
	defer span.End()

	events := make([]*history.Event, 0)

	var nextToken *string
	for {
		pageSize := b.options.PageSize
		if remaining := maxEvents - len(events); maxEvents > 0 && remaining < int(pageSize) {
			pageSize = int32(remaining)
		}

		b.countCall("GetExecutionHistory")

		out, err := b.api.GetExecutionHistory(ctx, &sdk.GetExecutionHistoryInput{
			ExecutionArn: aws.String(handle),
			MaxResults:   pageSize,
			ReverseOrder: mostRecentFirst,
			NextToken:    nextToken,
		})
		if err != nil {
			return nil, b.mapError("GetExecutionHistory", err)
		}

		for _, e := range out.Events {
			events = append(events, toHistoryEvent(e))
		}

		nextToken = out.NextToken
		if nextToken == nil || (maxEvents > 0 && len(events) >= maxEvents) {
			break
		}
	}

	if maxEvents > 0 && len(events) > maxEvents {
		events = events[:maxEvents]
	}

	b.Logger().Debug("retrieved execution history",
		log.ExecutionHandleKey, handle,
		log.EventCountKey, len(events),
	)

	return events, nil
}

func (b *sfnBackend) StartExecution(ctx context.Context, workflowID string, name string, input payload.Payload) (*core.Execution, error) {
	ctx, span := b.Tracer().Start(ctx, "StartExecution", trace.WithAttributes(
		attribute.String(log.WorkflowIDKey, workflowID),
		attribute.String(log.ExecutionNameKey, name),
	))
	defer span.End()

	b.countCall("StartExecution")

	out, err := b.api.StartExecution(ctx, &sdk.StartExecutionInput{
		StateMachineArn: aws.String(workflowID),
		Name:            aws.String(name),
		Input:           aws.String(string(input)),
	})
	if err != nil {
		return nil, b.mapError("StartExecution", err)
	}

	e := core.NewExecution(workflowID, aws.ToString(out.ExecutionArn), name, core.ExecutionStatusRunning, startTime(out.StartDate, time.Now()))
	e.Input = input

	return e, nil
}

func (b *sfnBackend) countCall(operation string) {
	b.Metrics().Counter(metrickeys.EngineCall, metrics.Tags{metrickeys.Operation: operation}, 1)
}

// mapError translates Step Functions errors into the backend's sentinel errors.
func (b *sfnBackend) mapError(operation string, err error) error {
	b.Metrics().Counter(metrickeys.EngineCallError, metrics.Tags{metrickeys.Operation: operation}, 1)

	var (
		alreadyExists *types.ExecutionAlreadyExists
		notFound      *types.ExecutionDoesNotExist
		noWorkflow    *types.StateMachineDoesNotExist
	)

	switch {
	case errors.As(err, &alreadyExists):
		return fmt.Errorf("%w: %w", backend.ErrExecutionAlreadyExists, err)
	case errors.As(err, &notFound):
		return fmt.Errorf("%w: %w", backend.ErrExecutionNotFound, err)
	case errors.As(err, &noWorkflow):
		return fmt.Errorf("%w: %w", backend.ErrWorkflowNotFound, err)
	}

	return fmt.Errorf("%s: %w", operation, err)
}

func (b *sfnBackend) Logger() *slog.Logger {
	return b.options.Logger
}

func (b *sfnBackend) Tracer() trace.Tracer {
	return b.options.TracerProvider.Tracer(backend.TracerName)
}

func (b *sfnBackend) Metrics() metrics.Client {
	return b.options.Metrics.WithTags(metrics.Tags{metrickeys.Backend: "sfn"})
}

func (b *sfnBackend) Options() *backend.Options {
	return &b.options.Options
}

func (b *sfnBackend) Close() error {
	return nil
}
