package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

// runSessionRequest is the body of POST /v1/sessions: an immutable agent
// snapshot plus the prompt to execute against it.
type runSessionRequest struct {
	Agent     domain.Agent `json:"agent"`
	Prompt    string       `json:"prompt"`
	AgentMode bool         `json:"agent_mode"`
}

// RunSession starts one execution and blocks until it reaches a terminal
// status. POST /v1/sessions
func (h *Handler) RunSession(c echo.Context) error {
	var req runSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Prompt == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "prompt is required"})
	}
	if req.Agent.ID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "agent.id is required"})
	}

	session, err := h.loop.Run(c.Request().Context(), req.Agent, req.Prompt, req.AgentMode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, session)
}

// GetSession returns one session's current record. GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	session, err := h.store.GetSession(ctx, c.Param("session_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, session)
}

// ListSteps returns the ordered step history of a session.
// GET /v1/sessions/:session_id/steps
func (h *Handler) ListSteps(c echo.Context) error {
	ctx := c.Request().Context()
	steps, err := h.store.ListSteps(ctx, c.Param("session_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"steps": steps})
}

// CancelSession requests cooperative cancellation of a running session.
// POST /v1/sessions/:session_id/cancel
func (h *Handler) CancelSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	if !h.loop.Cancel(sessionID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no running session with that id"})
	}
	return c.JSON(http.StatusOK, map[string]string{"session_id": sessionID, "status": "cancellation requested"})
}
