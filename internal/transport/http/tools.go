package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListTools returns every registered tool descriptor. GET /v1/tools
func (h *Handler) ListTools(c echo.Context) error {
	descriptors := h.registry.List(nil)
	return c.JSON(http.StatusOK, map[string]interface{}{"tools": descriptors})
}
