// Package loop implements the Execution Loop: the reason-act cycle that
// drives one agent session from a user prompt to a terminal result,
// dispatching tool calls through the policy engine and approval queue
// and recording every step to the audit journal.
package loop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lumicake/LumiAgent/internal/approval"
	"github.com/Lumicake/LumiAgent/internal/audit"
	"github.com/Lumicake/LumiAgent/internal/domain"
	"github.com/Lumicake/LumiAgent/internal/eventbus"
	"github.com/Lumicake/LumiAgent/internal/llm"
	"github.com/Lumicake/LumiAgent/internal/policy"
	"github.com/Lumicake/LumiAgent/internal/repository"
	"github.com/Lumicake/LumiAgent/internal/screencap"
	"github.com/Lumicake/LumiAgent/internal/tools"
)

// screenMutating is the set of tool names that, once dispatched in
// agent_mode, trigger a vision-feedback screenshot on the next iteration.
var screenMutating = map[string]bool{
	"open_application":                   true,
	"click_mouse":                        true,
	"scroll_mouse":                       true,
	"type_text":                          true,
	"press_key":                          true,
	"run_applescript_or_platform_script": true,
	"take_screenshot":                    true,
}

// Loop drives sessions to completion. It holds no per-session state
// beyond the cancellation registry; everything else is passed in or
// fetched fresh per call.
type Loop struct {
	store     repository.Store
	audit     *audit.Journal
	policy    *policy.Engine
	approvals *approval.Queue
	registry  *tools.Registry
	client    llm.Client
	capturer  screencap.Capturer
	hub       *eventbus.Hub

	normalCeiling      int
	agentModeCeiling   int
	visionSettle       time.Duration
	defaultApprovalTTL time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// New returns a Loop wired to its collaborators. hub may be nil; when set,
// every step and terminal status change is also published for WebSocket
// subscribers of the session. defaultApprovalTTL is the window an ask
// decision waits before the request expires, used when the agent's policy
// leaves MaxExecutionTimeSecs unset (see approvalTimeout).
func New(store repository.Store, j *audit.Journal, pol *policy.Engine, approvals *approval.Queue, registry *tools.Registry, client llm.Client, capturer screencap.Capturer, hub *eventbus.Hub, normalCeiling, agentModeCeiling int, visionSettle, defaultApprovalTTL time.Duration) *Loop {
	return &Loop{
		store:              store,
		audit:              j,
		policy:             pol,
		approvals:          approvals,
		registry:           registry,
		client:             client,
		capturer:           capturer,
		hub:                hub,
		normalCeiling:      normalCeiling,
		agentModeCeiling:   agentModeCeiling,
		visionSettle:       visionSettle,
		defaultApprovalTTL: defaultApprovalTTL,
		cancels:            make(map[string]context.CancelFunc),
	}
}

// Cancel requests that the named session stop at its next iteration
// boundary. It returns false if no such session is currently running.
func (l *Loop) Cancel(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cancel, ok := l.cancels[sessionID]
	if !ok {
		return false
	}
	cancel()
	return true
}

// Run drives one agent session on prompt to a terminal status and
// returns the finished session record.
func (l *Loop) Run(ctx context.Context, agentSnapshot domain.Agent, prompt string, agentMode bool) (*domain.ExecutionSession, error) {
	sessionID := "sess_" + uuid.New().String()
	runCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.cancels[sessionID] = cancel
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.cancels, sessionID)
		l.mu.Unlock()
		cancel()
	}()

	session := &domain.ExecutionSession{
		ID:         sessionID,
		AgentID:    agentSnapshot.ID,
		UserPrompt: prompt,
		Status:     domain.SessionRunning,
		StartedAt:  time.Now().UTC(),
		AgentMode:  agentMode,
	}
	if err := l.store.CreateSession(runCtx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	l.audit.Log(runCtx, domain.EventSessionStarted, domain.SeverityInfo, domain.ResultSuccess, "session_started", "", agentSnapshot.ID, sessionID, "", nil)
	l.publish(sessionID, "session_started", session)

	l.appendStep(runCtx, sessionID, domain.StepThinking, map[string]string{"prompt": prompt})

	messages := []domain.Message{{Role: "user", Content: prompt}}

	ceiling := l.normalCeiling
	if agentMode {
		ceiling = l.agentModeCeiling
	}

	toolNames := l.effectiveToolNames(agentSnapshot, agentMode)
	toolDefs := l.toolDefinitions(toolNames)

	agentState := agentSnapshot.Clone()

	var finalText string
	var loopErr string
	iteration := 0

	cancelled := false
	idempotencyCache := make(map[string]string)

	for iteration < ceiling {
		select {
		case <-runCtx.Done():
			loopErr = "cancelled"
			cancelled = true
		default:
		}
		if cancelled {
			break
		}

		resp, err := l.client.SendMessage(runCtx, llm.Request{
			Provider:           agentState.Provider,
			Model:              agentState.Model,
			Messages:           messages,
			SystemInstructions: agentState.SystemInstructions,
			Tools:              toolDefs,
			Temperature:        agentState.Temperature,
			MaxTokens:          agentState.MaxTokens,
		})
		if err != nil {
			loopErr = fmt.Sprintf("model request failed: %v", err)
			l.appendStep(runCtx, sessionID, domain.StepError, map[string]string{"error": loopErr})
			break
		}

		iteration++
		session.Iterations = iteration

		assistantMsg := domain.Message{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls}
		messages = append(messages, assistantMsg)
		l.appendStep(runCtx, sessionID, domain.StepModelResponse, map[string]interface{}{
			"content":       resp.Content,
			"tool_calls":    len(resp.ToolCalls),
			"finish_reason": resp.FinishReason,
		})

		if len(resp.ToolCalls) == 0 {
			finalText = resp.Content
			break
		}

		var dispatchedScreenMutator bool

		for _, call := range resp.ToolCalls {
			if call.ID == "" {
				call.ID = "call_" + uuid.New().String()
			}

			l.appendStep(runCtx, sessionID, domain.StepToolCall, map[string]string{"tool": call.Name, "call_id": call.ID, "args": fmt.Sprintf("%v", call.Args)})

			descriptor, known := l.registry.Get(call.Name)
			if !known {
				result := fmt.Sprintf("Tool not found: %s", call.Name)
				messages = append(messages, toolResultMessage(call, result))
				l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": result})
				continue
			}

			if call.IdempotencyKey != "" {
				if cached, replayed := idempotencyCache[call.Name+"|"+call.IdempotencyKey]; replayed {
					messages = append(messages, toolResultMessage(call, cached))
					l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": cached, "idempotent_replay": "true"})
					continue
				}
			}

			if call.Name == "update_self" {
				confirmation := l.applySelfUpdate(&agentState, call.Args)
				messages = append(messages, toolResultMessage(call, confirmation))
				l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": confirmation})
				l.audit.Log(runCtx, domain.EventConfigurationChanged, domain.SeverityInfo, domain.ResultSuccess, "update_self", agentState.ID, agentState.ID, sessionID, "", nil)
				continue
			}

			decision, err := l.policy.Evaluate(runCtx, call, descriptor.RiskLevel, agentState.Policy)
			if err != nil {
				result := fmt.Sprintf("Error: policy evaluation failed: %v", err)
				messages = append(messages, toolResultMessage(call, result))
				l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": result})
				continue
			}

			if decision.Action == domain.PolicyBlock {
				result := fmt.Sprintf("Blocked: %s", decision.Reasoning)
				l.audit.Log(runCtx, domain.EventSecurityViolation, domain.SeverityCritical, domain.ResultBlocked, call.Name, decision.EstimatedImpact, agentState.ID, sessionID, "", map[string]string{
					"risk_level": string(decision.RiskLevel),
					"reasoning":  decision.Reasoning,
				})
				messages = append(messages, toolResultMessage(call, result))
				l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": result})
				continue
			}

			effectiveCall := call
			if decision.Action == domain.PolicyAsk {
				req, err := l.approvals.Submit(runCtx, sessionID, agentState.ID, call, decision.RiskLevel, decision.Reasoning, decision.EstimatedImpact, l.approvalTimeout(agentState))
				if err != nil {
					result := fmt.Sprintf("Error: failed to request approval: %v", err)
					messages = append(messages, toolResultMessage(call, result))
					l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": result})
					continue
				}
				l.appendStep(runCtx, sessionID, domain.StepApprovalRequested, map[string]string{"approval_id": req.ID, "tool": call.Name})

				decided, err := l.approvals.AwaitDecision(runCtx, req.ID, req.ExpiresAt)
				if err != nil || decided == nil {
					result := "Error: approval could not be resolved"
					messages = append(messages, toolResultMessage(call, result))
					l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": result})
					continue
				}
				l.appendStep(runCtx, sessionID, domain.StepApprovalDecision, map[string]string{"approval_id": req.ID, "status": string(decided.Status)})

				switch decided.Status {
				case domain.ApprovalDenied:
					result := "Denied by user"
					if decided.Justification != "" {
						result += ": " + decided.Justification
					}
					messages = append(messages, toolResultMessage(call, result))
					l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": result})
					continue
				case domain.ApprovalExpired:
					result := "Error: approval timed out"
					messages = append(messages, toolResultMessage(call, result))
					l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": result})
					continue
				case domain.ApprovalModified:
					effectiveCall.Args = cloneArgs(call.Args)
					effectiveCall.Args["command"] = decided.ModifiedCommand
				case domain.ApprovalApproved:
					// falls through to dispatch below
				default:
					// AwaitDecision returned at its deadline while the expiry
					// sweeper hasn't yet flipped the record to expired; treat
					// it the same as an explicit expiry rather than dispatch
					// an unapproved call.
					result := "Error: approval timed out"
					messages = append(messages, toolResultMessage(call, result))
					l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": call.Name, "result": result})
					continue
				}
			}

			result, dispatchErr := l.dispatchWithTimeout(runCtx, descriptor, effectiveCall, agentState.Policy.MaxExecutionTimeSecs)
			kind := auditKindFor(effectiveCall, descriptor)

			switch {
			case dispatchErr == nil:
				l.audit.Log(runCtx, kind, domain.SeverityInfo, domain.ResultSuccess, effectiveCall.Name, firstNonEmptyArg(effectiveCall.Args), agentState.ID, sessionID, "", nil)
			case errors.Is(dispatchErr, context.DeadlineExceeded):
				result = "Error: timeout"
				l.audit.Log(runCtx, kind, domain.SeverityWarning, domain.ResultFailure, effectiveCall.Name, firstNonEmptyArg(effectiveCall.Args), agentState.ID, sessionID, "", map[string]string{"error": "timeout"})
			default:
				result = "Error: " + dispatchErr.Error()
				l.audit.Log(runCtx, kind, domain.SeverityError, domain.ResultFailure, effectiveCall.Name, firstNonEmptyArg(effectiveCall.Args), agentState.ID, sessionID, "", map[string]string{"error": dispatchErr.Error()})
			}

			messages = append(messages, toolResultMessage(effectiveCall, result))
			l.appendStep(runCtx, sessionID, domain.StepToolResult, map[string]string{"tool": effectiveCall.Name, "result": result})
			if effectiveCall.IdempotencyKey != "" {
				idempotencyCache[effectiveCall.Name+"|"+effectiveCall.IdempotencyKey] = result
			}

			if agentMode && screenMutating[effectiveCall.Name] {
				dispatchedScreenMutator = true
			}
		}

		if agentMode && dispatchedScreenMutator {
			l.emitVisionFeedback(runCtx, sessionID, &messages)
		}
	}

	if finalText == "" && loopErr == "" {
		loopErr = "max iterations"
		l.appendStep(runCtx, sessionID, domain.StepError, map[string]string{"error": loopErr})
	}

	status := domain.SessionCompleted
	result := &domain.ExecutionResult{Success: true, Output: finalText}
	if loopErr == "cancelled" {
		status = domain.SessionCancelled
		result = &domain.ExecutionResult{Success: false, Output: finalText, Error: "cancelled"}
	} else if loopErr != "" {
		status = domain.SessionFailed
		result = &domain.ExecutionResult{Success: false, Output: finalText, Error: loopErr}
	}

	if err := l.store.UpdateSessionStatus(ctx, sessionID, status, result); err != nil {
		log.Printf("ERROR: loop: failed to finalize session %s: %v", sessionID, err)
	}
	l.audit.Log(ctx, domain.EventSessionEnded, domain.SeverityInfo, domain.ResultSuccess, "session_ended", string(status), agentState.ID, sessionID, "", nil)

	session.Status = status
	session.Result = result
	l.publish(sessionID, "session_ended", session)
	return session, nil
}

func (l *Loop) publish(sessionID, eventType string, payload interface{}) {
	if l.hub == nil {
		return
	}
	l.hub.Publish(sessionID, eventType, payload)
}

func (l *Loop) effectiveToolNames(agent domain.Agent, agentMode bool) []string {
	if agentMode {
		return nil // empty filter means "every registered tool" per Registry.List
	}
	names := append([]string(nil), agent.EnabledTools...)
	names = append(names, "update_self")
	return dedupe(names)
}

func (l *Loop) toolDefinitions(names []string) []llm.ToolDefinition {
	descriptors := l.registry.List(names)
	defs := make([]llm.ToolDefinition, 0, len(descriptors))
	for _, d := range descriptors {
		defs = append(defs, llm.ToolDefinition{Name: d.Name, Description: d.Description, Params: d.Params})
	}
	return defs
}

// approvalTimeout derives the ask-decision wait window for agent: the
// agent's own MaxExecutionTimeSecs when set, otherwise the loop's
// configured default.
func (l *Loop) approvalTimeout(agent domain.Agent) time.Duration {
	if agent.Policy.MaxExecutionTimeSecs > 0 {
		return time.Duration(agent.Policy.MaxExecutionTimeSecs) * time.Second
	}
	return l.defaultApprovalTTL
}

func (l *Loop) dispatchWithTimeout(ctx context.Context, descriptor domain.ToolDescriptor, call domain.ToolCall, maxSecs int) (string, error) {
	if maxSecs <= 0 {
		maxSecs = 30
	}
	dispatchCtx, cancel := context.WithTimeout(ctx, time.Duration(maxSecs)*time.Second)
	defer cancel()
	return l.registry.Dispatch(dispatchCtx, call)
}

// applySelfUpdate mutates agent in place per the update_self contract and
// returns a human-readable confirmation. Never reachable from Dispatch.
func (l *Loop) applySelfUpdate(agent *domain.Agent, args map[string]string) string {
	var changed []string
	if v, ok := args["name"]; ok && v != "" {
		agent.Name = v
		changed = append(changed, "name")
	}
	if v, ok := args["system_prompt"]; ok && v != "" {
		agent.SystemInstructions = v
		changed = append(changed, "system_prompt")
	}
	if v, ok := args["model"]; ok && v != "" {
		agent.Model = v
		changed = append(changed, "model")
	}
	if v, ok := args["temperature"]; ok && v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			agent.Temperature = domain.ClampTemperature(t)
			changed = append(changed, "temperature")
		}
	}
	agent.UpdatedAt = time.Now().UTC()
	if len(changed) == 0 {
		return "No changes applied."
	}
	return fmt.Sprintf("Updated %s.", strings.Join(changed, ", "))
}

func (l *Loop) emitVisionFeedback(ctx context.Context, sessionID string, messages *[]domain.Message) {
	if l.capturer == nil {
		return
	}
	time.Sleep(l.visionSettle)
	img, err := l.capturer.Capture(ctx, "", 1440)
	if err != nil {
		log.Printf("WARN: loop: screenshot capture unavailable, skipping vision feedback: %v", err)
		return
	}
	*messages = append(*messages, domain.Message{
		Role:      "user",
		Content:   "Here is the current screen. Use it as the authoritative ground truth for your next action.",
		ImageJPEG: img,
	})
	l.appendStep(ctx, sessionID, domain.StepScreenshotObserved, map[string]int{"bytes": len(img)})
}

func (l *Loop) appendStep(ctx context.Context, sessionID string, kind domain.StepKind, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = json.RawMessage(`{}`)
	}
	step := &domain.ExecutionStep{
		ID:        "step_" + uuid.New().String(),
		SessionID: sessionID,
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.store.AppendStep(ctx, step); err != nil {
		log.Printf("ERROR: loop: failed to append step kind=%s session=%s: %v", kind, sessionID, err)
	}
	l.publish(sessionID, "step", step)
}

func toolResultMessage(call domain.ToolCall, result string) domain.Message {
	return domain.Message{Role: "tool", Content: result, ToolCallID: call.ID, ToolName: call.Name}
}

func cloneArgs(args map[string]string) map[string]string {
	out := make(map[string]string, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}

func firstNonEmptyArg(args map[string]string) string {
	for _, key := range []string{"target", "path", "file_path", "command", "url"} {
		if v := args[key]; v != "" {
			return v
		}
	}
	return ""
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func auditKindFor(call domain.ToolCall, d domain.ToolDescriptor) domain.AuditEventKind {
	switch d.Category {
	case domain.CategoryNetwork:
		return domain.EventNetworkRequest
	case domain.CategoryFile:
		switch call.Name {
		case "read_file", "list_directory", "get_file_info", "search_files", "count_lines":
			return domain.EventFileAccessed
		default:
			return domain.EventFileModified
		}
	case domain.CategoryShell, domain.CategoryCodeExec:
		if strings.HasPrefix(strings.TrimSpace(strings.ToLower(call.Args["command"])), "sudo ") {
			return domain.EventSudoExecuted
		}
		return domain.EventCommandExecuted
	default:
		return domain.EventCommandExecuted
	}
}
