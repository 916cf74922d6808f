package test

import (
	"context"
	"testing"

	"github.com/cschleiden/go-resume/backend"
	"github.com/cschleiden/go-resume/core"
	"github.com/cschleiden/go-resume/payload"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// BackendTest runs the behavior every workflow engine client has to provide. setup returns a
// backend together with the id of a workflow executions can be started for.
func BackendTest(t *testing.T, setup func() (backend.Backend, string), teardown func(b backend.Backend)) {
	tests := []struct {
		name string
		f    func(t *testing.T, ctx context.Context, b backend.Backend, workflowID string)
	}{
		{
			name: "ListExecutions_EmptyWithoutExecutions",
			f: func(t *testing.T, ctx context.Context, b backend.Backend, workflowID string) {
				executions, err := b.ListExecutions(ctx, workflowID, 1)
				require.NoError(t, err)
				require.Empty(t, executions)
			},
		},
		{
			name: "StartExecution_ReturnsRunningExecution",
			f: func(t *testing.T, ctx context.Context, b backend.Backend, workflowID string) {
				name := uuid.NewString()

				e, err := b.StartExecution(ctx, workflowID, name, payload.Payload(`{"resumeTo":""}`))
				require.NoError(t, err)
				require.NotEmpty(t, e.Handle)
				require.Equal(t, name, e.Name)
				require.Equal(t, core.ExecutionStatusRunning, e.Status)
				require.False(t, e.StartedAt.IsZero())
			},
		},
		{
			name: "StartExecution_SameNameErrors",
			f: func(t *testing.T, ctx context.Context, b backend.Backend, workflowID string) {
				name := uuid.NewString()

				_, err := b.StartExecution(ctx, workflowID, name, payload.Payload(`{"resumeTo":""}`))
				require.NoError(t, err)

				_, err = b.StartExecution(ctx, workflowID, name, payload.Payload(`{"resumeTo":""}`))
				require.ErrorIs(t, err, backend.ErrExecutionAlreadyExists)
			},
		},
		{
			name: "ListExecutions_MostRecentFirst",
			f: func(t *testing.T, ctx context.Context, b backend.Backend, workflowID string) {
				first, err := b.StartExecution(ctx, workflowID, "first-"+uuid.NewString(), nil)
				require.NoError(t, err)

				second, err := b.StartExecution(ctx, workflowID, "second-"+uuid.NewString(), nil)
				require.NoError(t, err)

				executions, err := b.ListExecutions(ctx, workflowID, 1)
				require.NoError(t, err)
				require.Len(t, executions, 1)
				require.Equal(t, second.Handle, executions[0].Handle)

				executions, err = b.ListExecutions(ctx, workflowID, 10)
				require.NoError(t, err)
				require.Len(t, executions, 2)
				require.Equal(t, first.Handle, executions[1].Handle)
			},
		},
		{
			name: "GetExecutionHistory_ReturnsEvents",
			f: func(t *testing.T, ctx context.Context, b backend.Backend, workflowID string) {
				e, err := b.StartExecution(ctx, workflowID, uuid.NewString(), nil)
				require.NoError(t, err)

				events, err := b.GetExecutionHistory(ctx, e.Handle, 1000, true)
				require.NoError(t, err)
				require.NotEmpty(t, events)

				limited, err := b.GetExecutionHistory(ctx, e.Handle, 1, true)
				require.NoError(t, err)
				require.Len(t, limited, 1)
			},
		},
		{
			name: "GetExecutionHistory_UnknownExecutionErrors",
			f: func(t *testing.T, ctx context.Context, b backend.Backend, workflowID string) {
				_, err := b.GetExecutionHistory(ctx, "unknown-"+uuid.NewString(), 1000, true)
				require.ErrorIs(t, err, backend.ErrExecutionNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, workflowID := setup()
			ctx := context.Background()
			tt.f(t, ctx, b, workflowID)
			if teardown != nil {
				teardown(b)
			}
		})
	}
}
