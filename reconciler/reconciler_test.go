package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-resume/backend/memory"
	"github.com/cschleiden/go-resume/decision"
	"github.com/cschleiden/go-resume/lifecycle"
	smemory "github.com/cschleiden/go-resume/store/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeHandler struct {
	mu       sync.Mutex
	statuses []string
	err      error
	requests []lifecycle.Request
}

func (h *fakeHandler) Handle(ctx context.Context, r lifecycle.Request) (*lifecycle.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.requests = append(h.requests, r)

	if h.err != nil {
		return nil, h.err
	}

	status := "RUNNING"
	if len(h.statuses) > 0 {
		status = h.statuses[0]
		h.statuses = h.statuses[1:]
	}

	return &lifecycle.Response{
		PhysicalResourceID: r.PhysicalResourceID,
		Data:               map[string]string{lifecycle.AttrCurrentStatus: status},
	}, nil
}

func (h *fakeHandler) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.requests)
}

var target = Target{
	PhysicalID: "resource-1",
	Properties: map[string]any{lifecycle.PropStateMachine: "arn:sm"},
}

func Test_Reconcile_RetriesErrorStatuses(t *testing.T) {
	h := &fakeHandler{statuses: []string{"EXECUTION_LIST_ERROR", "EXECUTION_START_FAILED", "EXECUTION_STARTED"}}
	r := New(h, nil, WithBackoff(time.Millisecond, 2*time.Millisecond, time.Second))

	resp, err := r.Reconcile(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, "EXECUTION_STARTED", resp.Data[lifecycle.AttrCurrentStatus])
	require.Equal(t, 3, h.calls())

	for _, req := range h.requests {
		require.Equal(t, decision.KindUpdate, req.Kind)
		require.Equal(t, "resource-1", req.PhysicalResourceID)
		require.NotEmpty(t, req.RequestID)
	}

	require.NotEqual(t, h.requests[0].RequestID, h.requests[1].RequestID)
}

func Test_Reconcile_GivesUp(t *testing.T) {
	statuses := make([]string, 100)
	for i := range statuses {
		statuses[i] = "EXECUTION_HISTORY_ERROR"
	}

	h := &fakeHandler{statuses: statuses}
	r := New(h, nil, WithBackoff(5*time.Millisecond, 5*time.Millisecond, 20*time.Millisecond))

	resp, err := r.Reconcile(context.Background(), target)
	require.ErrorIs(t, err, ErrStatus)
	require.Equal(t, "EXECUTION_HISTORY_ERROR", resp.Data[lifecycle.AttrCurrentStatus])
	require.Greater(t, h.calls(), 1)
}

func Test_Reconcile_InvalidPropertiesAreNotRetried(t *testing.T) {
	h := &fakeHandler{err: lifecycle.ErrInvalidProperties}
	r := New(h, nil, WithBackoff(time.Millisecond, time.Millisecond, time.Second))

	_, err := r.Reconcile(context.Background(), target)
	require.ErrorIs(t, err, lifecycle.ErrInvalidProperties)
	require.Equal(t, 1, h.calls())
}

func Test_Reconcile_HandlerErrorsAreRetried(t *testing.T) {
	h := &fakeHandler{err: errors.New("storing attributes: connection refused")}
	r := New(h, nil, WithBackoff(time.Millisecond, time.Millisecond, 20*time.Millisecond))

	_, err := r.Reconcile(context.Background(), target)
	require.Error(t, err)
	require.Greater(t, h.calls(), 1)
}

func Test_Reconciler_StartAndStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := clock.NewMock()
	h := &fakeHandler{}
	r := New(h, []Target{target, {PhysicalID: "resource-2"}}, WithClock(c), WithInterval(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, r.Start(ctx))

	require.Eventually(t, func() bool {
		return h.calls() >= 2
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		c.Add(time.Minute)
		return h.calls() >= 4
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, r.WaitForCompletion())
}

func Test_Reconcile_LifecycleHandler(t *testing.T) {
	c := clock.NewMock()
	b := memory.NewMemoryBackend(memory.WithClock(c))
	h := lifecycle.NewHandler(decision.New(b, decision.WithClock(c)), smemory.NewMemoryStore(), nil, lifecycle.WithClock(c))

	r := New(h, nil, WithClock(c))

	resp, err := r.Reconcile(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, "EXECUTION_STARTED", resp.Data[lifecycle.AttrCurrentStatus])

	// Still running
	resp, err = r.Reconcile(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, "RUNNING", resp.Data[lifecycle.AttrCurrentStatus])
}

func Test_Reconcile_RateLimit(t *testing.T) {
	h := &fakeHandler{}
	r := New(h, nil, WithRateLimit(20))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := r.Reconcile(context.Background(), target)
		require.NoError(t, err)
	}

	// The first update passes right away, the next two wait 50ms each.
	require.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func Test_Reconcile_RateLimitCanceled(t *testing.T) {
	h := &fakeHandler{}
	r := New(h, nil, WithRateLimit(0.001))

	_, err := r.Reconcile(context.Background(), target)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Reconcile(ctx, target)
	require.Error(t, err)
	require.Equal(t, 1, h.calls())
}

func Test_Reconcile_ManualPropertiesDoNotOverlapRuns(t *testing.T) {
	c := clock.NewMock()
	b := memory.NewMemoryBackend(memory.WithClock(c))
	h := lifecycle.NewHandler(decision.New(b, decision.WithClock(c)), smemory.NewMemoryStore(), nil, lifecycle.WithClock(c))

	manual := Target{
		PhysicalID: "resource-1",
		Properties: map[string]any{
			lifecycle.PropStateMachine: "arn:sm",
			lifecycle.PropExecInput:    `{"x":1}`,
			lifecycle.PropResumeFrom:   "Deploy",
		},
	}

	r := New(h, nil, WithClock(c))

	statuses := []string{}
	for i := 0; i < 3; i++ {
		resp, err := r.Reconcile(context.Background(), manual)
		require.NoError(t, err)
		statuses = append(statuses, resp.Data[lifecycle.AttrCurrentStatus])

		c.Add(5 * time.Minute)
	}

	require.Equal(t, []string{"EXECUTION_STARTED", "RUNNING", "RUNNING"}, statuses)

	executions, err := b.ListExecutions(context.Background(), "arn:sm", 0)
	require.NoError(t, err)
	require.Len(t, executions, 1)

	// The target itself is left untouched
	require.Contains(t, manual.Properties, lifecycle.PropExecInput)
}

func Test_Reconcile_StripsManualProperties(t *testing.T) {
	h := &fakeHandler{}
	r := New(h, nil)

	_, err := r.Reconcile(context.Background(), Target{
		PhysicalID: "resource-1",
		Properties: map[string]any{
			lifecycle.PropStateMachine: "arn:sm",
			lifecycle.PropExecInput:    `{"x":1}`,
			lifecycle.PropResumeFrom:   "Deploy",
			lifecycle.PropStartTime:    "0",
		},
	})
	require.NoError(t, err)

	require.Len(t, h.requests, 1)
	require.Equal(t, map[string]any{
		lifecycle.PropStateMachine: "arn:sm",
		lifecycle.PropStartTime:    "0",
	}, h.requests[0].Properties)
}
