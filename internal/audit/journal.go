// Package audit wraps the repository's audit storage in the append-only
// journal the rest of the core writes security-relevant events to.
package audit

import (
	"context"
	"encoding/csv"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lumicake/LumiAgent/internal/domain"
	"github.com/Lumicake/LumiAgent/internal/repository"
)

// Journal records security-relevant events. A write failure is logged
// and swallowed: audit logging must never abort the caller's flow.
type Journal struct {
	store repository.Store
	host  string
}

// New returns a Journal backed by store. host is stamped on every entry
// (hostname of the process recording the event).
func New(store repository.Store) *Journal {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return &Journal{store: store, host: host}
}

// Log appends a new audit entry. Errors are logged, not returned, so a
// failing audit write can never block or fail the operation it describes.
func (j *Journal) Log(ctx context.Context, kind domain.AuditEventKind, severity domain.AuditSeverity, result domain.AuditResult, action, target string, agentID, sessionID, userID string, detail map[string]string) {
	entry := &domain.AuditEntry{
		ID:        "evt_" + uuid.New().String(),
		EventKind: kind,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
		AgentID:   agentID,
		SessionID: sessionID,
		UserID:    userID,
		Action:    action,
		Target:    target,
		Result:    result,
		Detail:    detail,
		Host:      j.host,
	}
	if err := j.store.CreateAuditEntry(ctx, entry); err != nil {
		log.Printf("ERROR: audit: failed to write entry kind=%s action=%q: %v", kind, action, err)
	}
}

// Query returns entries matching f.
func (j *Journal) Query(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	return j.store.QueryAuditEntries(ctx, f)
}

var csvHeader = []string{"id", "event_type", "severity", "timestamp (ISO-8601 UTC)", "agent_id", "session_id", "user_id", "action", "target", "result"}

// Export writes entries matching f to w as CSV, with the header row fixed
// above. The action field escapes commas as semicolons so a single comma
// inside a shell command never shifts the column alignment downstream
// tools expect from a strict CSV reader.
func (j *Journal) Export(ctx context.Context, w io.Writer, f domain.AuditFilter) error {
	entries, err := j.store.QueryAuditEntries(ctx, f)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.ID,
			string(e.EventKind),
			string(e.Severity),
			e.Timestamp.UTC().Format(time.RFC3339),
			e.AgentID,
			e.SessionID,
			e.UserID,
			strings.ReplaceAll(e.Action, ",", ";"),
			e.Target,
			string(e.Result),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
