package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendStep_AssignsMonotonicSeqPerSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := &domain.ExecutionSession{
		ID:         "sess-1",
		AgentID:    "agent-1",
		UserPrompt: "hi",
		Status:     domain.SessionRunning,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.CreateSession(ctx, session))

	for i := 0; i < 3; i++ {
		step := &domain.ExecutionStep{
			ID:        "step-" + string(rune('a'+i)),
			SessionID: session.ID,
			Kind:      domain.StepThinking,
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, store.AppendStep(ctx, step))
		require.Equal(t, i+1, step.Seq, "AppendStep must assign the next monotonic seq")
	}

	steps, err := store.ListSteps(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	for i, st := range steps {
		require.Equal(t, i+1, st.Seq)
	}
}

func TestAppendStep_DoesNotClobberSessionIterations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := &domain.ExecutionSession{
		ID:         "sess-2",
		AgentID:    "agent-1",
		UserPrompt: "hi",
		Status:     domain.SessionRunning,
		Iterations: 7,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.CreateSession(ctx, session))

	for i := 0; i < 2; i++ {
		require.NoError(t, store.AppendStep(ctx, &domain.ExecutionStep{
			ID:        "step-x" + string(rune('0'+i)),
			SessionID: session.ID,
			Kind:      domain.StepThinking,
			CreatedAt: time.Now().UTC(),
		}))
	}

	stored, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, 7, stored.Iterations, "AppendStep must not overwrite iterations with a step seq")
}

func TestAppendStep_SeqIsPerSessionNotGlobal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"sess-a", "sess-b"} {
		require.NoError(t, store.CreateSession(ctx, &domain.ExecutionSession{
			ID:         id,
			AgentID:    "agent-1",
			UserPrompt: "hi",
			Status:     domain.SessionRunning,
			StartedAt:  time.Now().UTC(),
		}))
	}

	stepA := &domain.ExecutionStep{ID: "step-a1", SessionID: "sess-a", Kind: domain.StepThinking, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.AppendStep(ctx, stepA))
	require.Equal(t, 1, stepA.Seq)

	stepB := &domain.ExecutionStep{ID: "step-b1", SessionID: "sess-b", Kind: domain.StepThinking, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.AppendStep(ctx, stepB))
	require.Equal(t, 1, stepB.Seq, "a fresh session starts its own seq at 1 regardless of other sessions")
}
