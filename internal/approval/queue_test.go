package approval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/audit"
	"github.com/Lumicake/LumiAgent/internal/domain"
	"github.com/Lumicake/LumiAgent/internal/repository"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, audit.New(store))
}

func TestQueue_ApproveIsTerminalAndSingleTransition(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	call := domain.ToolCall{ID: "tc_1", Name: "write_file", Args: map[string]string{"path": "/tmp/x"}}
	req, err := q.Submit(ctx, "sess-1", "agent-1", call, domain.RiskMedium, "reasoning", "impact", time.Minute)
	require.NoError(t, err)

	require.NoError(t, q.Approve(ctx, req.ID, "looks fine", ""))
	require.Error(t, q.Approve(ctx, req.ID, "again", ""))
	require.Error(t, q.Deny(ctx, req.ID, "too late"))
}

func TestQueue_FIFOPromotion(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	first, err := q.Submit(ctx, "sess-1", "agent-1", domain.ToolCall{ID: "tc_1", Name: "a"}, domain.RiskLow, "r", "i", time.Minute)
	require.NoError(t, err)
	_, err = q.Submit(ctx, "sess-1", "agent-1", domain.ToolCall{ID: "tc_2", Name: "b"}, domain.RiskLow, "r", "i", time.Minute)
	require.NoError(t, err)

	current, err := q.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, current.ID)
}

func TestQueue_ExpirePendingFlipsStatus(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	req, err := q.Submit(ctx, "sess-1", "agent-1", domain.ToolCall{ID: "tc_1", Name: "a"}, domain.RiskLow, "r", "i", -time.Second)
	require.NoError(t, err)

	expired, err := q.ExpirePending(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, req.ID, expired[0].ID)
	require.Equal(t, domain.ApprovalExpired, expired[0].Status)
}

func TestQueue_AwaitDecisionReturnsOnApprove(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	req, err := q.Submit(ctx, "sess-1", "agent-1", domain.ToolCall{ID: "tc_1", Name: "a"}, domain.RiskLow, "r", "i", time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = q.Approve(ctx, req.ID, "ok", "")
	}()

	decided, err := q.AwaitDecision(ctx, req.ID, time.Now().Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, domain.ApprovalApproved, decided.Status)
}

func TestQueue_AwaitDecisionTimesOut(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	req, err := q.Submit(ctx, "sess-1", "agent-1", domain.ToolCall{ID: "tc_1", Name: "a"}, domain.RiskLow, "r", "i", 20*time.Millisecond)
	require.NoError(t, err)

	decided, err := q.AwaitDecision(ctx, req.ID, time.Now().Add(20*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, domain.ApprovalPending, decided.Status)
}

func TestQueue_SkipCurrentOnSingleItemQueueReturnsSameRequest(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	req, err := q.Submit(ctx, "sess-1", "agent-1", domain.ToolCall{ID: "tc_1", Name: "a"}, domain.RiskLow, "r", "i", time.Minute)
	require.NoError(t, err)

	q.SkipCurrent(ctx)

	current, err := q.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, req.ID, current.ID, "skipping the only pending request must re-present it, not drop it")
}
