// Package repository defines the persistence interface for the agent
// execution core and a SQLite-backed implementation.
package repository

import (
	"context"
	"time"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

// Store is the interface every collaborator of the core talks to for
// durable state: sessions, their step history, approvals and the audit
// journal. The backing store is transactional at the row level.
type Store interface {
	// Session / step operations
	CreateSession(ctx context.Context, s *domain.ExecutionSession) error
	GetSession(ctx context.Context, id string) (*domain.ExecutionSession, error)
	UpdateSessionStatus(ctx context.Context, id string, status domain.SessionStatus, result *domain.ExecutionResult) error
	AppendStep(ctx context.Context, step *domain.ExecutionStep) error
	ListSteps(ctx context.Context, sessionID string) ([]domain.ExecutionStep, error)
	CountModelResponseSteps(ctx context.Context, sessionID string) (int, error)

	// Approval operations
	CreateApproval(ctx context.Context, a *domain.ApprovalRequest) error
	GetApproval(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	UpdateApprovalStatus(ctx context.Context, id string, status domain.ApprovalStatus, justification, modifiedCommand string, decidedAt time.Time) (bool, error)
	ListPendingApprovals(ctx context.Context) ([]domain.ApprovalRequest, error)
	ExpirePending(ctx context.Context, now time.Time) ([]domain.ApprovalRequest, error)

	// Audit operations (write-once, never fails the caller's flow)
	CreateAuditEntry(ctx context.Context, e *domain.AuditEntry) error
	QueryAuditEntries(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error)

	Close() error
}
