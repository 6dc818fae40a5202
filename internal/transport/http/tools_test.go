package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func TestListTools_ReturnsRegisteredDescriptorsWithoutHandlers(t *testing.T) {
	h, _, _ := newTestHandler(t)
	h.registry.Register(domain.ToolDescriptor{
		Name:      "noop",
		Category:  domain.CategoryFile,
		RiskLevel: domain.RiskLow,
		Handler: func(ctx context.Context, args map[string]string) (string, error) {
			return "ok", nil
		},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tools", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ListTools(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), `"handler"`)

	var resp map[string][]domain.ToolDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["tools"], 1)
	require.Equal(t, "noop", resp["tools"][0].Name)
}
