// Package lifecycle handles create, update, and delete events of the resource that owns a workflow.
// Each event runs a resume decision and reports the resulting attributes, merged with the ones
// reported before.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-resume/decision"
	"github.com/cschleiden/go-resume/log"
	"github.com/cschleiden/go-resume/store"
)

type Request struct {
	Kind decision.Kind

	RequestID string

	// PhysicalResourceID is empty for create events.
	PhysicalResourceID string

	Properties map[string]any
}

type Response struct {
	PhysicalResourceID string

	Data map[string]string
}

type Handler struct {
	engine *decision.Engine
	store  store.Store
	logger *slog.Logger
	clock  clock.Clock
}

type HandlerOption func(*Handler)

func WithClock(c clock.Clock) HandlerOption {
	return func(h *Handler) {
		h.clock = c
	}
}

func NewHandler(engine *decision.Engine, s store.Store, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		engine: engine,
		store:  s,
		logger: logger,
		clock:  clock.New(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Handler) Handle(ctx context.Context, r Request) (*Response, error) {
	physicalID := r.PhysicalResourceID
	if physicalID == "" {
		physicalID = r.RequestID
	}

	logger := h.logger.With(
		log.RequestKindKey, r.Kind.String(),
		log.RequestIDKey, r.RequestID,
		log.PhysicalIDKey, physicalID,
	)

	previous := h.load(ctx, logger, physicalID)

	if r.Kind == decision.KindDelete {
		if err := h.store.Delete(ctx, physicalID); err != nil {
			logger.Warn("Could not delete stored attributes", log.ErrorKey, err)
		}

		logger.Info("Deleted resource")

		return &Response{PhysicalResourceID: physicalID, Data: previous}, nil
	}

	props, err := ParseProperties(r.Properties)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProperties, err)
	}

	res := h.engine.Decide(ctx, decision.Request{
		Kind:               r.Kind,
		WorkflowID:         props.StateMachine,
		ScheduledStartTime: props.StartTime,
		ManualInput:        props.ExecInput,
		TargetState:        props.ResumeFrom,
		RequestID:          r.RequestID,
	})

	data := merge(previous, res)

	if err := h.store.Put(ctx, &store.Record{
		PhysicalID: physicalID,
		WorkflowID: props.StateMachine,
		Attributes: data,
		UpdatedAt:  h.clock.Now(),
	}); err != nil {
		return nil, fmt.Errorf("storing attributes: %w", err)
	}

	logger.Info("Handled lifecycle event",
		log.WorkflowIDKey, props.StateMachine,
		log.StatusKey, data[AttrCurrentStatus],
		log.ExecutionHandleKey, data[AttrLastExecutionArn],
	)

	return &Response{PhysicalResourceID: physicalID, Data: data}, nil
}

// load returns the attributes reported last time. Errors are logged and treated as if nothing was
// reported yet.
func (h *Handler) load(ctx context.Context, logger *slog.Logger, physicalID string) map[string]string {
	data := make(map[string]string, len(attributeKeys))
	for _, k := range attributeKeys {
		data[k] = ""
	}

	r, err := h.store.Get(ctx, physicalID)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			logger.Warn("Could not load stored attributes", log.ErrorKey, err)
		}

		return data
	}

	for _, k := range attributeKeys {
		data[k] = r.Attributes[k]
	}

	return data
}

// merge takes every attribute the decision produced and keeps the previous value for the others.
func merge(previous map[string]string, res *decision.Result) map[string]string {
	data := make(map[string]string, len(attributeKeys))
	for _, k := range attributeKeys {
		data[k] = previous[k]
	}

	if !res.LastExecutionStartTime.IsZero() {
		data[AttrActualStartTime] = res.LastExecutionStartTime.UTC().Format(time.RFC3339)
	}

	if res.Status != "" {
		data[AttrCurrentStatus] = string(res.Status)
	}

	if ts := res.TaskStates(); ts != "" {
		data[AttrTaskStates] = ts
	}

	if res.LastExecutionHandle != "" {
		data[AttrLastExecutionArn] = res.LastExecutionHandle
	}

	return data
}
