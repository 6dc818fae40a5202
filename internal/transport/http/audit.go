package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func parseAuditFilter(c echo.Context) domain.AuditFilter {
	f := domain.AuditFilter{
		AgentID:        c.QueryParam("agent_id"),
		SessionID:      c.QueryParam("session_id"),
		ActionContains: c.QueryParam("action_contains"),
	}
	if since := c.QueryParam("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			f.Since = &t
		}
	}
	if until := c.QueryParam("until"); until != "" {
		if t, err := time.Parse(time.RFC3339, until); err == nil {
			f.Until = &t
		}
	}
	if kinds := c.QueryParam("event_kinds"); kinds != "" {
		for _, k := range strings.Split(kinds, ",") {
			f.EventKinds = append(f.EventKinds, domain.AuditEventKind(strings.TrimSpace(k)))
		}
	}
	if sevs := c.QueryParam("severities"); sevs != "" {
		for _, s := range strings.Split(sevs, ",") {
			f.Severities = append(f.Severities, domain.AuditSeverity(strings.TrimSpace(s)))
		}
	}
	if offset, err := strconv.Atoi(c.QueryParam("offset")); err == nil {
		f.Offset = offset
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		f.Limit = limit
	}
	return f
}

// QueryAudit returns audit entries matching the request's filter
// parameters. GET /v1/audit
func (h *Handler) QueryAudit(c echo.Context) error {
	entries, err := h.audit.Query(c.Request().Context(), parseAuditFilter(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"entries": entries})
}

// ExportAudit streams matching audit entries as a CSV attachment.
// GET /v1/audit/export
func (h *Handler) ExportAudit(c echo.Context) error {
	c.Response().Header().Set("Content-Disposition", `attachment; filename="audit_export.csv"`)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().WriteHeader(http.StatusOK)
	return h.audit.Export(c.Request().Context(), c.Response(), parseAuditFilter(c))
}
