package test

import (
	"context"
	"testing"
	"time"

	"github.com/cschleiden/go-resume/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func record(updatedAt time.Time, attributes map[string]string) *store.Record {
	return &store.Record{
		PhysicalID: uuid.NewString(),
		WorkflowID: "arn:aws:states:eu-west-1:123456789012:stateMachine:" + uuid.NewString(),
		Attributes: attributes,
		UpdatedAt:  updatedAt,
	}
}

// StoreTest runs the behavior every attribute store has to provide.
func StoreTest(t *testing.T, setup func() store.Store, teardown func(s store.Store)) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	tests := []struct {
		name string
		f    func(t *testing.T, ctx context.Context, s store.Store)
	}{
		{
			name: "Get_ReturnsNotFound",
			f: func(t *testing.T, ctx context.Context, s store.Store) {
				_, err := s.Get(ctx, uuid.NewString())
				require.ErrorIs(t, err, store.ErrRecordNotFound)
			},
		},
		{
			name: "Put_ThenGet",
			f: func(t *testing.T, ctx context.Context, s store.Store) {
				r := record(now, map[string]string{"CurrentStatus": "RUNNING", "AttrTaskStates": `{"failedState":""}`})
				require.NoError(t, s.Put(ctx, r))

				got, err := s.Get(ctx, r.PhysicalID)
				require.NoError(t, err)
				require.Equal(t, r.PhysicalID, got.PhysicalID)
				require.Equal(t, r.WorkflowID, got.WorkflowID)
				require.Equal(t, r.Attributes, got.Attributes)
				require.True(t, r.UpdatedAt.Equal(got.UpdatedAt))
			},
		},
		{
			name: "Put_Replaces",
			f: func(t *testing.T, ctx context.Context, s store.Store) {
				r := record(now, map[string]string{"CurrentStatus": "RUNNING"})
				require.NoError(t, s.Put(ctx, r))

				r.Attributes = map[string]string{"CurrentStatus": "FAILED"}
				r.UpdatedAt = now.Add(time.Second)
				require.NoError(t, s.Put(ctx, r))

				got, err := s.Get(ctx, r.PhysicalID)
				require.NoError(t, err)
				require.Equal(t, map[string]string{"CurrentStatus": "FAILED"}, got.Attributes)
				require.True(t, r.UpdatedAt.Equal(got.UpdatedAt))
			},
		},
		{
			name: "Get_ReturnsCopy",
			f: func(t *testing.T, ctx context.Context, s store.Store) {
				r := record(now, map[string]string{"CurrentStatus": "RUNNING"})
				require.NoError(t, s.Put(ctx, r))

				got, err := s.Get(ctx, r.PhysicalID)
				require.NoError(t, err)
				got.Attributes["CurrentStatus"] = "changed"

				got, err = s.Get(ctx, r.PhysicalID)
				require.NoError(t, err)
				require.Equal(t, "RUNNING", got.Attributes["CurrentStatus"])
			},
		},
		{
			name: "Delete_RemovesRecord",
			f: func(t *testing.T, ctx context.Context, s store.Store) {
				r := record(now, map[string]string{})
				require.NoError(t, s.Put(ctx, r))

				require.NoError(t, s.Delete(ctx, r.PhysicalID))

				_, err := s.Get(ctx, r.PhysicalID)
				require.ErrorIs(t, err, store.ErrRecordNotFound)

				records, err := s.List(ctx, 10)
				require.NoError(t, err)
				require.Empty(t, records)
			},
		},
		{
			name: "Delete_MissingIsNoError",
			f: func(t *testing.T, ctx context.Context, s store.Store) {
				require.NoError(t, s.Delete(ctx, uuid.NewString()))
			},
		},
		{
			name: "List_MostRecentlyUpdatedFirst",
			f: func(t *testing.T, ctx context.Context, s store.Store) {
				old := record(now.Add(-time.Hour), map[string]string{"n": "old"})
				recent := record(now, map[string]string{"n": "recent"})
				middle := record(now.Add(-time.Minute), map[string]string{"n": "middle"})

				for _, r := range []*store.Record{old, recent, middle} {
					require.NoError(t, s.Put(ctx, r))
				}

				records, err := s.List(ctx, 2)
				require.NoError(t, err)
				require.Len(t, records, 2)
				require.Equal(t, recent.PhysicalID, records[0].PhysicalID)
				require.Equal(t, middle.PhysicalID, records[1].PhysicalID)

				records, err = s.List(ctx, 10)
				require.NoError(t, err)
				require.Len(t, records, 3)
				require.Equal(t, "old", records[2].Attributes["n"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setup()
			ctx := context.Background()
			tt.f(t, ctx, s)
			if teardown != nil {
				teardown(s)
			}
		})
	}
}
