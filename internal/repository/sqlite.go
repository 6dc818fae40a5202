package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a SQLite-backed store at dsn.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate
	// databases. Keep a single connection so schema/data stay visible
	// across the goroutines that share this store.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			user_prompt TEXT NOT NULL,
			status TEXT NOT NULL,
			agent_mode INTEGER NOT NULL DEFAULT 0,
			iterations INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			result TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS steps (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			payload TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_steps_session ON steps(session_id, seq)`,
		`CREATE TABLE IF NOT EXISTS approvals (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			tool_call TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			reasoning TEXT,
			estimated_impact TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			justification TEXT,
			modified_command TEXT,
			requested_at DATETIME NOT NULL,
			decided_at DATETIME,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_approvals_status ON approvals(status, expires_at)`,
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id TEXT PRIMARY KEY,
			event_kind TEXT NOT NULL,
			severity TEXT NOT NULL,
			ts DATETIME NOT NULL,
			agent_id TEXT,
			session_id TEXT,
			user_id TEXT,
			action TEXT NOT NULL,
			target TEXT,
			result TEXT NOT NULL,
			detail TEXT,
			host TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_entries(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_entries(session_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *domain.ExecutionSession) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, agent_id, user_prompt, status, agent_mode, iterations, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.AgentID, sess.UserPrompt, sess.Status, boolToInt(sess.AgentMode), sess.Iterations, sess.StartedAt)
	return err
}

// GetSession retrieves a session by id.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*domain.ExecutionSession, error) {
	var sess domain.ExecutionSession
	var agentMode int
	var endedAt sql.NullTime
	var result sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, agent_id, user_prompt, status, agent_mode, iterations, started_at, ended_at, result FROM sessions WHERE id = ?`,
		id).Scan(&sess.ID, &sess.AgentID, &sess.UserPrompt, &sess.Status, &agentMode, &sess.Iterations, &sess.StartedAt, &endedAt, &result)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.AgentMode = agentMode != 0
	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}
	if result.Valid {
		var r domain.ExecutionResult
		if err := json.Unmarshal([]byte(result.String), &r); err == nil {
			sess.Result = &r
		}
	}
	return &sess, nil
}

// UpdateSessionStatus transitions a session to a new status, optionally
// attaching its terminal result and end timestamp.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, id string, status domain.SessionStatus, result *domain.ExecutionResult) error {
	var resultStr sql.NullString
	var endedAt sql.NullTime
	if result != nil {
		b, _ := json.Marshal(result)
		resultStr = sql.NullString{String: string(b), Valid: true}
		endedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, result = COALESCE(?, result), ended_at = COALESCE(?, ended_at) WHERE id = ?`,
		status, resultStr, endedAt, id)
	return err
}

// AppendStep appends a step to a session's history, assigning it the next
// monotonic seq within that session.
func (s *SQLiteStore) AppendStep(ctx context.Context, step *domain.ExecutionStep) error {
	payload := ""
	if step.Payload != nil {
		payload = string(step.Payload)
	}
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM steps WHERE session_id = ?`, step.SessionID)
	if err := row.Scan(&step.Seq); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO steps (id, session_id, seq, kind, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		step.ID, step.SessionID, step.Seq, step.Kind, payload, step.CreatedAt)
	return err
}

// ListSteps returns a session's steps in submission order.
func (s *SQLiteStore) ListSteps(ctx context.Context, sessionID string) ([]domain.ExecutionStep, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, seq, kind, payload, created_at FROM steps WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []domain.ExecutionStep
	for rows.Next() {
		var st domain.ExecutionStep
		var payload sql.NullString
		if err := rows.Scan(&st.ID, &st.SessionID, &st.Seq, &st.Kind, &payload, &st.CreatedAt); err != nil {
			return nil, err
		}
		if payload.Valid {
			st.Payload = json.RawMessage(payload.String)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// CountModelResponseSteps counts "model_response" steps for a session
// (the quantity the bounded-loop invariant limits).
func (s *SQLiteStore) CountModelResponseSteps(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM steps WHERE session_id = ? AND kind = ?`, sessionID, domain.StepModelResponse).Scan(&n)
	return n, err
}

// CreateApproval creates a new approval request.
func (s *SQLiteStore) CreateApproval(ctx context.Context, a *domain.ApprovalRequest) error {
	toolCall, _ := json.Marshal(a.ToolCall)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO approvals (id, session_id, agent_id, tool_call, risk_level, reasoning, estimated_impact, status, requested_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SessionID, a.AgentID, string(toolCall), a.RiskLevel, a.Reasoning, a.EstimatedImpact, a.Status, a.RequestedAt, a.ExpiresAt)
	return err
}

func scanApproval(row interface {
	Scan(dest ...interface{}) error
}) (*domain.ApprovalRequest, error) {
	var a domain.ApprovalRequest
	var toolCall string
	var justification, modifiedCommand sql.NullString
	var decidedAt sql.NullTime
	err := row.Scan(&a.ID, &a.SessionID, &a.AgentID, &toolCall, &a.RiskLevel, &a.Reasoning, &a.EstimatedImpact,
		&a.Status, &justification, &modifiedCommand, &a.RequestedAt, &decidedAt, &a.ExpiresAt)
	if err != nil {
		return nil, err
	}
	json.Unmarshal([]byte(toolCall), &a.ToolCall)
	if justification.Valid {
		a.Justification = justification.String
	}
	if modifiedCommand.Valid {
		a.ModifiedCommand = modifiedCommand.String
	}
	if decidedAt.Valid {
		a.DecidedAt = &decidedAt.Time
	}
	return &a, nil
}

const approvalColumns = `id, session_id, agent_id, tool_call, risk_level, reasoning, estimated_impact, status, justification, modified_command, requested_at, decided_at, expires_at`

// GetApproval retrieves an approval request by id.
func (s *SQLiteStore) GetApproval(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+approvalColumns+` FROM approvals WHERE id = ?`, id)
	a, err := scanApproval(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateApprovalStatus makes the one terminal transition an approval is
// allowed. It is a no-op (returns false) if the request no longer exists
// or is already terminal.
func (s *SQLiteStore) UpdateApprovalStatus(ctx context.Context, id string, status domain.ApprovalStatus, justification, modifiedCommand string, decidedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE approvals SET status = ?, justification = ?, modified_command = ?, decided_at = ?
		 WHERE id = ? AND status = 'pending'`,
		status, nullString(justification), nullString(modifiedCommand), decidedAt, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListPendingApprovals returns every approval still awaiting a decision,
// FIFO by requested_at.
func (s *SQLiteStore) ListPendingApprovals(ctx context.Context) ([]domain.ApprovalRequest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+approvalColumns+` FROM approvals WHERE status = 'pending' ORDER BY requested_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ApprovalRequest
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ExpirePending flips every pending approval whose deadline has passed to
// expired, returning the ones that changed.
func (s *SQLiteStore) ExpirePending(ctx context.Context, now time.Time) ([]domain.ApprovalRequest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+approvalColumns+` FROM approvals WHERE status = 'pending' AND expires_at < ?`, now)
	if err != nil {
		return nil, err
	}
	var expired []domain.ApprovalRequest
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		expired = append(expired, *a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range expired {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE approvals SET status = 'expired', decided_at = ? WHERE id = ? AND status = 'pending'`,
			now, expired[i].ID); err != nil {
			return nil, err
		}
		expired[i].Status = domain.ApprovalExpired
		expired[i].DecidedAt = &now
	}
	return expired, nil
}

// CreateAuditEntry appends a write-once audit entry.
func (s *SQLiteStore) CreateAuditEntry(ctx context.Context, e *domain.AuditEntry) error {
	detail, _ := json.Marshal(e.Detail)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_entries (id, event_kind, severity, ts, agent_id, session_id, user_id, action, target, result, detail, host)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.EventKind, e.Severity, e.Timestamp, nullString(e.AgentID), nullString(e.SessionID), nullString(e.UserID),
		e.Action, nullString(e.Target), e.Result, string(detail), e.Host)
	return err
}

// QueryAuditEntries returns matching entries ordered by timestamp
// descending, with offset/limit pagination.
func (s *SQLiteStore) QueryAuditEntries(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	query := `SELECT id, event_kind, severity, ts, agent_id, session_id, user_id, action, target, result, detail, host FROM audit_entries WHERE 1=1`
	var args []interface{}

	if f.Since != nil {
		query += ` AND ts >= ?`
		args = append(args, *f.Since)
	}
	if f.Until != nil {
		query += ` AND ts <= ?`
		args = append(args, *f.Until)
	}
	if len(f.EventKinds) > 0 {
		placeholders := make([]string, len(f.EventKinds))
		for i, k := range f.EventKinds {
			placeholders[i] = "?"
			args = append(args, k)
		}
		query += fmt.Sprintf(" AND event_kind IN (%s)", strings.Join(placeholders, ","))
	}
	if len(f.Severities) > 0 {
		placeholders := make([]string, len(f.Severities))
		for i, sv := range f.Severities {
			placeholders[i] = "?"
			args = append(args, sv)
		}
		query += fmt.Sprintf(" AND severity IN (%s)", strings.Join(placeholders, ","))
	}
	if f.AgentID != "" {
		query += ` AND agent_id = ?`
		args = append(args, f.AgentID)
	}
	if f.SessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, f.SessionID)
	}
	if f.ActionContains != "" {
		query += ` AND (action LIKE ? OR target LIKE ?)`
		like := "%" + f.ActionContains + "%"
		args = append(args, like, like)
	}

	query += ` ORDER BY ts DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
		if f.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", f.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var agentID, sessionID, userID, target, detail sql.NullString
		if err := rows.Scan(&e.ID, &e.EventKind, &e.Severity, &e.Timestamp, &agentID, &sessionID, &userID, &e.Action, &target, &e.Result, &detail, &e.Host); err != nil {
			return nil, err
		}
		e.AgentID = agentID.String
		e.SessionID = sessionID.String
		e.UserID = userID.String
		e.Target = target.String
		if detail.Valid && detail.String != "" && detail.String != "null" {
			var d map[string]string
			if err := json.Unmarshal([]byte(detail.String), &d); err == nil {
				e.Detail = d
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
