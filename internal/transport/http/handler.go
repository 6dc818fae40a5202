// Package http exposes the execution core over HTTP: running agent
// sessions, deciding pending approvals, and querying the audit journal.
package http

import (
	"github.com/labstack/echo/v4"

	"github.com/Lumicake/LumiAgent/internal/approval"
	"github.com/Lumicake/LumiAgent/internal/audit"
	"github.com/Lumicake/LumiAgent/internal/eventbus"
	"github.com/Lumicake/LumiAgent/internal/loop"
	"github.com/Lumicake/LumiAgent/internal/repository"
	"github.com/Lumicake/LumiAgent/internal/tools"
)

// Handler holds every collaborator the HTTP surface dispatches into.
type Handler struct {
	store     repository.Store
	loop      *loop.Loop
	approvals *approval.Queue
	audit     *audit.Journal
	registry  *tools.Registry
	hub       *eventbus.Hub
}

// NewHandler returns a Handler wired to its collaborators.
func NewHandler(store repository.Store, lp *loop.Loop, approvals *approval.Queue, j *audit.Journal, registry *tools.Registry, hub *eventbus.Hub) *Handler {
	return &Handler{store: store, loop: lp, approvals: approvals, audit: j, registry: registry, hub: hub}
}

// RegisterInternalRoutes attaches the session/run lifecycle and live event
// stream to e: the surface an orchestrating caller drives a session
// through, not meant to be exposed beyond the deployment boundary.
func (h *Handler) RegisterInternalRoutes(e *echo.Echo) {
	e.POST("/v1/sessions", h.RunSession)
	e.GET("/v1/sessions/:session_id", h.GetSession)
	e.GET("/v1/sessions/:session_id/steps", h.ListSteps)
	e.POST("/v1/sessions/:session_id/cancel", h.CancelSession)

	e.GET("/ws/sessions/:session_id", h.HandleWebSocket)
}

// RegisterExternalRoutes attaches the approval-decision, audit, and tool
// introspection surface to e: the operator-facing API a human approver
// or an out-of-loop client talks to.
func (h *Handler) RegisterExternalRoutes(e *echo.Echo) {
	e.GET("/v1/approvals/current", h.CurrentApproval)
	e.POST("/v1/approvals/:approval_id/approve", h.ApproveApproval)
	e.POST("/v1/approvals/:approval_id/deny", h.DenyApproval)
	e.POST("/v1/approvals/skip_current", h.SkipCurrentApproval)

	e.GET("/v1/audit", h.QueryAudit)
	e.GET("/v1/audit/export", h.ExportAudit)

	e.GET("/v1/tools", h.ListTools)
}

// RegisterRoutes attaches every route this handler serves to e. Useful for
// a single-process deployment or a test harness that doesn't need the
// internal/external port split.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	h.RegisterInternalRoutes(e)
	h.RegisterExternalRoutes(e)
}
