package decision

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-resume/backend"
	"github.com/cschleiden/go-resume/core"
	"github.com/cschleiden/go-resume/history"
	im "github.com/cschleiden/go-resume/internal/metrics"
	"github.com/cschleiden/go-resume/payload"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const workflowID = "arn:aws:states:eu-west-1:123456789012:stateMachine:deploy"

func newMockBackend(t *testing.T) *backend.MockBackend {
	b := backend.NewMockBackend(t)
	b.On("Tracer").Return(noop.NewTracerProvider().Tracer("test")).Maybe()
	b.On("Logger").Return(slog.Default()).Maybe()
	b.On("Metrics").Return(im.NewNoopMetricsClient()).Maybe()
	b.On("Options").Return(&backend.Options{MaxHistoryEvents: 1000}).Maybe()

	return b
}

func lastExecution(status core.ExecutionStatus) *core.Execution {
	return core.NewExecution(workflowID, workflowID+":last", "last", status, time.Unix(100, 0))
}

// failedHistory is Deploy failing after Build succeeded, most recent event first.
func failedHistory() []*history.Event {
	return history.Reverse([]*history.Event{
		history.NewStateEnteredEvent(1, time.Time{}, "Build", payload.Payload(`{"resumeTo":""}`)),
		history.NewStateExitedEvent(2, time.Time{}, "Build", payload.Payload(`{}`)),
		history.NewStateEnteredEvent(3, time.Time{}, "Deploy", payload.Payload(`{"resumeTo":"","x":1}`)),
		history.NewHistoryEvent(4, time.Time{}, history.EventType_Failed, nil),
	})
}

// captureStart expects a start and stores the input it was called with.
func captureStart(b *backend.MockBackend, name string, input *payload.Payload) *mock.Call {
	return b.On("StartExecution", mock.Anything, workflowID, name, mock.Anything).Run(func(args mock.Arguments) {
		*input = args.Get(3).(payload.Payload)
	}).Return(core.NewExecution(workflowID, workflowID+":new", name, core.ExecutionStatusRunning, time.Unix(200, 0)), nil)
}

func Test_Engine_Decide_NoExecutions_StartsFresh(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{}, nil)

	var started payload.Payload
	captureStart(b, "ResumeManager-req-1-0", &started)

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID, RequestID: "req-1"})

	require.NoError(t, r.Err)
	require.Equal(t, ActionStart, r.Action)
	require.Equal(t, StatusExecutionStarted, r.Status)
	require.Equal(t, workflowID+":new", r.LastExecutionHandle)
	require.Equal(t, time.Unix(200, 0), r.LastExecutionStartTime)
	require.Nil(t, r.Continuation)
	require.Empty(t, r.TaskStates())
	require.JSONEq(t, `{"resumeTo":""}`, started.String())
	require.JSONEq(t, `{"resumeTo":""}`, r.StartedInput.String())
}

func Test_Engine_Decide_ResumesFailedExecution(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusFailed)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return(failedHistory(), nil)

	var started payload.Payload
	captureStart(b, "ResumeManager-req-1-0", &started)

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID, RequestID: "req-1"})

	require.NoError(t, r.Err)
	require.Equal(t, ActionStart, r.Action)
	require.Equal(t, StatusExecutionStarted, r.Status)
	require.JSONEq(t, `{"resumeTo":"Deploy","x":1}`, started.String())

	require.NotNil(t, r.Continuation)
	require.Equal(t, "Deploy", r.Continuation.FailedState)
	require.Equal(t, "Build", r.Continuation.SucceededState)
	require.JSONEq(t, `{"failedState":"Deploy","succeededState":"Build","newInput":{"resumeTo":"Deploy","x":1}}`, r.TaskStates())
}

func Test_Engine_Decide_ResumesTimedOutAndAbortedExecutions(t *testing.T) {
	for _, status := range []core.ExecutionStatus{core.ExecutionStatusTimedOut, core.ExecutionStatusAborted} {
		t.Run(string(status), func(t *testing.T) {
			b := newMockBackend(t)
			b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(status)}, nil)
			b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return(failedHistory(), nil)

			var started payload.Payload
			captureStart(b, "ResumeManager-req-0", &started)

			e := New(b, WithClock(clock.NewMock()))
			r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID, RequestID: "req"})

			require.Equal(t, StatusExecutionStarted, r.Status)
			require.JSONEq(t, `{"resumeTo":"Deploy","x":1}`, started.String())
		})
	}
}

func Test_Engine_Decide_RunningIsIdempotentNoop(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusRunning)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return(failedHistory()[2:], nil)

	c := clock.NewMock()
	e := New(b, WithClock(c))

	req := Request{Kind: KindUpdate, WorkflowID: workflowID, RequestID: "req-1"}
	first := e.Decide(context.Background(), req)

	c.Add(time.Hour)
	second := e.Decide(context.Background(), req)

	require.Equal(t, ActionNone, first.Action)
	require.Equal(t, Status("RUNNING"), first.Status)
	require.Equal(t, workflowID+":last", first.LastExecutionHandle)
	require.Equal(t, time.Unix(100, 0), first.LastExecutionStartTime)
	require.Equal(t, first, second)

	b.AssertNotCalled(t, "StartExecution", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func Test_Engine_Decide_SucceededIsNoop(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusSucceeded)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return(history.Reverse([]*history.Event{
		history.NewStateEnteredEvent(1, time.Time{}, "Build", payload.Payload(`{}`)),
		history.NewStateExitedEvent(2, time.Time{}, "Build", payload.Payload(`{}`)),
		history.NewHistoryEvent(3, time.Time{}, history.EventType_ExecutionSucceeded, nil),
	}), nil)

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID})

	require.Equal(t, ActionNone, r.Action)
	require.Equal(t, Status("SUCCEEDED"), r.Status)
	require.Equal(t, "Build", r.Continuation.SucceededState)
	b.AssertNotCalled(t, "StartExecution", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func Test_Engine_Decide_CreateNotDue(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{}, nil)

	c := clock.NewMock()
	c.Set(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	e := New(b, WithClock(c))
	r := e.Decide(context.Background(), Request{
		Kind:               KindCreate,
		WorkflowID:         workflowID,
		ScheduledStartTime: c.Now().Add(time.Hour),
	})

	require.NoError(t, r.Err)
	require.Equal(t, ActionNone, r.Action)
	require.Empty(t, r.Status)
	require.Empty(t, r.LastExecutionHandle)
	b.AssertNotCalled(t, "StartExecution", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func Test_Engine_Decide_CreateDueStartsWithManualInput(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusRunning)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return([]*history.Event{}, nil)

	c := clock.NewMock()
	c.Set(time.UnixMilli(1700000000000))

	var started payload.Payload
	captureStart(b, "ResumeManager-req-1700000000000", &started)

	e := New(b, WithClock(c))
	r := e.Decide(context.Background(), Request{
		Kind:               KindCreate,
		WorkflowID:         workflowID,
		RequestID:          "req",
		ScheduledStartTime: c.Now(),
		ManualInput:        payload.Payload(`{"env":"prod"}`),
	})

	require.Equal(t, StatusExecutionStarted, r.Status)
	require.JSONEq(t, `{"env":"prod","resumeTo":""}`, started.String())
}

func Test_Engine_Decide_ManualInputOverridesRunning(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusRunning)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return(failedHistory(), nil)

	var started payload.Payload
	captureStart(b, "ResumeManager-req-0", &started)

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{
		Kind:        KindUpdate,
		WorkflowID:  workflowID,
		RequestID:   "req",
		ManualInput: payload.Payload(`{"resumeTo":"Build","force":true}`),
	})

	require.Equal(t, StatusExecutionStarted, r.Status)
	require.JSONEq(t, `{"resumeTo":"Build","force":true}`, started.String())
	require.JSONEq(t, `{"resumeTo":"Build","force":true}`, r.Continuation.ResumeInput.String())
	require.Equal(t, "Deploy", r.Continuation.FailedState)
}

func Test_Engine_Decide_InvalidManualInputIsIgnored(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusRunning)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return([]*history.Event{}, nil)

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{
		Kind:        KindUpdate,
		WorkflowID:  workflowID,
		ManualInput: payload.Payload(`{"broken":`),
	})

	require.NoError(t, r.Err)
	require.Equal(t, ActionNone, r.Action)
	require.Equal(t, Status("RUNNING"), r.Status)
	b.AssertNotCalled(t, "StartExecution", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func Test_Engine_Decide_TargetStateRerunsSucceeded(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusSucceeded)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return(history.Reverse([]*history.Event{
		history.NewStateEnteredEvent(1, time.Time{}, "Build", payload.Payload(`{"artifact":"a"}`)),
		history.NewStateExitedEvent(2, time.Time{}, "Build", payload.Payload(`{}`)),
		history.NewHistoryEvent(3, time.Time{}, history.EventType_ExecutionSucceeded, nil),
	}), nil)

	var started payload.Payload
	captureStart(b, "ResumeManager-req-0", &started)

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID, RequestID: "req", TargetState: "Build"})

	require.Equal(t, StatusExecutionStarted, r.Status)
	require.JSONEq(t, `{"artifact":"a","resumeTo":"Build"}`, started.String())
}

func Test_Engine_Decide_TargetStateDoesNotInterruptRunning(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusRunning)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return([]*history.Event{}, nil)

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID, TargetState: "Build"})

	require.Equal(t, ActionNone, r.Action)
	b.AssertNotCalled(t, "StartExecution", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func Test_Engine_Decide_ListError(t *testing.T) {
	listErr := errors.New("throttled")

	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return(nil, listErr)

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID})

	require.Equal(t, StatusListError, r.Status)
	require.True(t, r.Status.IsError())
	require.Equal(t, ActionNone, r.Action)
	require.ErrorIs(t, r.Err, ErrListExecutions)
	require.ErrorIs(t, r.Err, listErr)

	b.AssertNotCalled(t, "GetExecutionHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	b.AssertNotCalled(t, "StartExecution", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func Test_Engine_Decide_HistoryError(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusFailed)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 1000, true).Return(nil, errors.New("access denied"))

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID})

	require.Equal(t, StatusHistoryError, r.Status)
	require.ErrorIs(t, r.Err, ErrGetHistory)
	require.Equal(t, workflowID+":last", r.LastExecutionHandle)
	require.Equal(t, time.Unix(100, 0), r.LastExecutionStartTime)
	require.Nil(t, r.Continuation)
	b.AssertNotCalled(t, "StartExecution", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func Test_Engine_Decide_StartError(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{}, nil)
	b.On("StartExecution", mock.Anything, workflowID, mock.Anything, mock.Anything).Return(nil, backend.ErrExecutionAlreadyExists).Once()

	e := New(b, WithClock(clock.NewMock()))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID})

	require.Equal(t, StatusStartFailed, r.Status)
	require.True(t, r.Status.IsError())
	require.Equal(t, ActionNone, r.Action)
	require.ErrorIs(t, r.Err, ErrStartExecution)
	require.ErrorIs(t, r.Err, backend.ErrExecutionAlreadyExists)
	require.JSONEq(t, `{"resumeTo":""}`, r.StartedInput.String())
}

func Test_Engine_Decide_DeleteIsNoop(t *testing.T) {
	b := newMockBackend(t)

	e := New(b)
	r := e.Decide(context.Background(), Request{Kind: KindDelete, WorkflowID: workflowID})

	require.Equal(t, ActionNone, r.Action)
	require.Empty(t, r.Status)
	b.AssertNotCalled(t, "ListExecutions", mock.Anything, mock.Anything, mock.Anything)
}

func Test_Engine_Decide_MaxHistoryEvents(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{lastExecution(core.ExecutionStatusRunning)}, nil)
	b.On("GetExecutionHistory", mock.Anything, workflowID+":last", 50, true).Return([]*history.Event{}, nil)

	e := New(b, WithMaxHistoryEvents(50))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID})

	require.Equal(t, ActionNone, r.Action)
}

func Test_Engine_Decide_GeneratesRequestID(t *testing.T) {
	b := newMockBackend(t)
	b.On("ListExecutions", mock.Anything, workflowID, 1).Return([]*core.Execution{}, nil)
	b.On("StartExecution", mock.Anything, workflowID, mock.MatchedBy(func(name string) bool {
		// prefix, a UUID, and the timestamp
		return len(name) == len("Custom-")+36+len("-0") && name[:7] == "Custom-"
	}), mock.Anything).Return(core.NewExecution(workflowID, "h", "n", core.ExecutionStatusRunning, time.Time{}), nil)

	c := clock.NewMock()
	e := New(b, WithClock(c), WithRunNamePrefix("Custom"))
	r := e.Decide(context.Background(), Request{Kind: KindUpdate, WorkflowID: workflowID})

	require.Equal(t, StatusExecutionStarted, r.Status)
	require.Equal(t, c.Now(), r.LastExecutionStartTime)
}
