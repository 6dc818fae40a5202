// Package approval implements the human-in-the-loop approval queue: a
// FIFO of pending tool-call approval requests with bounded waits and a
// background expiry sweep.
package approval

import (
	"container/list"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lumicake/LumiAgent/internal/audit"
	"github.com/Lumicake/LumiAgent/internal/domain"
	"github.com/Lumicake/LumiAgent/internal/repository"
)

// Queue holds pending human decisions with timeouts and expiry. All
// mutations go through a single mutex, the queue's serialization point.
type Queue struct {
	store  repository.Store
	audit  *audit.Journal
	mu     sync.Mutex
	order  *list.List // of *domain.ApprovalRequest, pending only, FIFO
	waiter map[string]chan struct{}
}

// New returns a Queue backed by store, auditing decisions through j.
func New(store repository.Store, j *audit.Journal) *Queue {
	return &Queue{
		store:  store,
		audit:  j,
		order:  list.New(),
		waiter: make(map[string]chan struct{}),
	}
}

// Submit appends a new request and promotes it if nothing else is ahead
// of it. timeout is the policy-derived window before the request expires.
func (q *Queue) Submit(ctx context.Context, sessionID, agentID string, call domain.ToolCall, risk domain.RiskLevel, reasoning, impact string, timeout time.Duration) (*domain.ApprovalRequest, error) {
	now := time.Now().UTC()
	req := &domain.ApprovalRequest{
		ID:              "ap_" + uuid.New().String(),
		SessionID:       sessionID,
		AgentID:         agentID,
		ToolCall:        call,
		RiskLevel:       risk,
		Reasoning:       reasoning,
		EstimatedImpact: impact,
		Status:          domain.ApprovalPending,
		RequestedAt:     now,
		ExpiresAt:       now.Add(timeout),
	}
	if err := q.store.CreateApproval(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create approval: %w", err)
	}

	q.mu.Lock()
	q.order.PushBack(req)
	q.waiter[req.ID] = make(chan struct{})
	q.mu.Unlock()

	q.audit.Log(ctx, domain.EventApprovalRequested, domain.SeverityInfo, domain.ResultBlocked, call.Name, req.EstimatedImpact, agentID, sessionID, "", map[string]string{
		"approval_id": req.ID,
		"risk_level":  string(risk),
	})
	return req, nil
}

// Current returns the earliest-submitted pending request, or nil if the
// queue is empty.
func (q *Queue) Current(ctx context.Context) (*domain.ApprovalRequest, error) {
	q.mu.Lock()
	front := q.order.Front()
	q.mu.Unlock()
	if front == nil {
		return nil, nil
	}
	req := front.Value.(*domain.ApprovalRequest)
	return q.store.GetApproval(ctx, req.ID)
}

// Approve makes the terminal transition to approved, or to modified when
// modifiedCommand is non-empty.
func (q *Queue) Approve(ctx context.Context, id, justification, modifiedCommand string) error {
	status := domain.ApprovalApproved
	if modifiedCommand != "" {
		status = domain.ApprovalModified
	}
	return q.decide(ctx, id, status, justification, modifiedCommand, domain.EventApprovalGranted, domain.ResultSuccess)
}

// Deny makes the terminal transition to denied.
func (q *Queue) Deny(ctx context.Context, id, justification string) error {
	return q.decide(ctx, id, domain.ApprovalDenied, justification, "", domain.EventApprovalDenied, domain.ResultBlocked)
}

func (q *Queue) decide(ctx context.Context, id string, status domain.ApprovalStatus, justification, modifiedCommand string, eventKind domain.AuditEventKind, result domain.AuditResult) error {
	req, err := q.store.GetApproval(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get approval: %w", err)
	}
	if req == nil {
		return fmt.Errorf("approval not found: %s", id)
	}
	if req.Status.IsTerminal() {
		return fmt.Errorf("approval %s is already terminal: %s", id, req.Status)
	}

	ok, err := q.store.UpdateApprovalStatus(ctx, id, status, justification, modifiedCommand, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update approval status: %w", err)
	}
	if !ok {
		return fmt.Errorf("approval %s was already decided", id)
	}

	q.remove(id)
	q.notify(id)

	q.audit.Log(ctx, eventKind, domain.SeverityInfo, result, req.ToolCall.Name, req.EstimatedImpact, req.AgentID, req.SessionID, "", map[string]string{
		"approval_id": id,
		"status":      string(status),
	})
	return nil
}

// SkipCurrent un-promotes the current request without deciding it,
// rotating it to the back of the presentation order (it remains pending).
// On a single-item queue the front is also the back, so MoveToBack is a
// no-op and the same request is re-presented rather than livelocking.
func (q *Queue) SkipCurrent(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.order.Front()
	if front == nil {
		return
	}
	q.order.MoveToBack(front)
}

// AwaitDecision blocks until req reaches a terminal status or deadline
// passes, whichever comes first, then returns the final record.
func (q *Queue) AwaitDecision(ctx context.Context, id string, deadline time.Time) (*domain.ApprovalRequest, error) {
	q.mu.Lock()
	ch, ok := q.waiter[id]
	q.mu.Unlock()
	if !ok {
		return q.store.GetApproval(ctx, id)
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case <-ch:
	case <-timer.C:
	case <-ctx.Done():
		return q.store.GetApproval(ctx, id)
	}
	return q.store.GetApproval(ctx, id)
}

// ExpirePending flips every pending request whose deadline has passed
// to expired. Intended to be called by a background sweeper at a fixed
// cadence.
func (q *Queue) ExpirePending(ctx context.Context, now time.Time) ([]domain.ApprovalRequest, error) {
	expired, err := q.store.ExpirePending(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire pending approvals: %w", err)
	}
	for _, req := range expired {
		q.remove(req.ID)
		q.notify(req.ID)
		q.audit.Log(ctx, domain.EventApprovalExpired, domain.SeverityWarning, domain.ResultBlocked, req.ToolCall.Name, req.EstimatedImpact, req.AgentID, req.SessionID, "", map[string]string{
			"approval_id": req.ID,
		})
	}
	return expired, nil
}

func (q *Queue) remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for e := q.order.Front(); e != nil; e = e.Next() {
		if e.Value.(*domain.ApprovalRequest).ID == id {
			q.order.Remove(e)
			break
		}
	}
}

func (q *Queue) notify(id string) {
	q.mu.Lock()
	ch, ok := q.waiter[id]
	if ok {
		delete(q.waiter, id)
	}
	q.mu.Unlock()
	if ok {
		close(ch)
	}
}

// RunExpirySweep runs ExpirePending at the given cadence until ctx is
// cancelled. The spec calls for roughly a five second cadence.
func (q *Queue) RunExpirySweep(ctx context.Context, cadence time.Duration) {
	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := q.ExpirePending(ctx, time.Now().UTC()); err != nil {
				log.Printf("WARN: approval expiry sweep failed: %v", err)
			}
		}
	}
}
