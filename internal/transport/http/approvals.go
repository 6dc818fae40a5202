package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CurrentApproval returns the earliest-submitted pending approval, if any.
// GET /v1/approvals/current
func (h *Handler) CurrentApproval(c echo.Context) error {
	req, err := h.approvals.Current(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if req == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"approval": nil})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"approval": req})
}

type decisionRequest struct {
	Justification   string `json:"justification,omitempty"`
	ModifiedCommand string `json:"modified_command,omitempty"`
}

// ApproveApproval grants a pending approval, optionally substituting a
// modified command. POST /v1/approvals/:approval_id/approve
func (h *Handler) ApproveApproval(c echo.Context) error {
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	id := c.Param("approval_id")
	if err := h.approvals.Approve(c.Request().Context(), id, req.Justification, req.ModifiedCommand); err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"approval_id": id, "status": "decided"})
}

// DenyApproval denies a pending approval. POST /v1/approvals/:approval_id/deny
func (h *Handler) DenyApproval(c echo.Context) error {
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	id := c.Param("approval_id")
	if err := h.approvals.Deny(c.Request().Context(), id, req.Justification); err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"approval_id": id, "status": "decided"})
}

// SkipCurrentApproval rotates the current request to the back of the
// presentation order without deciding it. POST /v1/approvals/skip_current
func (h *Handler) SkipCurrentApproval(c echo.Context) error {
	h.approvals.SkipCurrent(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"status": "skipped"})
}
