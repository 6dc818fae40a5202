package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func echoTestAgent() domain.Agent {
	return domain.Agent{
		ID:           "agent-1",
		Name:         "test-agent",
		Provider:     "mock",
		Model:        "mock-model",
		Temperature:  0.5,
		MaxTokens:    512,
		EnabledTools: nil,
		Policy:       domain.DefaultSecurityPolicy(),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestRunSession_MissingPromptReturns400(t *testing.T) {
	h, _, _ := newTestHandler(t)
	e := echo.New()

	body, _ := json.Marshal(runSessionRequest{Agent: echoTestAgent()})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.RunSession(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunSession_RunsAndPersists(t *testing.T) {
	h, store, _ := newTestHandler(t)
	e := echo.New()

	body, _ := json.Marshal(runSessionRequest{Agent: echoTestAgent(), Prompt: "say hi"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.RunSession(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var session domain.ExecutionSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.ID)

	stored, err := store.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestGetSession_NotFoundReturns404(t *testing.T) {
	h, _, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("missing")

	require.NoError(t, h.GetSession(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSteps_ReturnsSessionSteps(t *testing.T) {
	h, _, _ := newTestHandler(t)
	e := echo.New()

	runBody, _ := json.Marshal(runSessionRequest{Agent: echoTestAgent(), Prompt: "say hi"})
	runReq := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(runBody))
	runReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	runRec := httptest.NewRecorder()
	runCtx := e.NewContext(runReq, runRec)
	require.NoError(t, h.RunSession(runCtx))

	var session domain.ExecutionSession
	require.NoError(t, json.Unmarshal(runRec.Body.Bytes(), &session))

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+session.ID+"/steps", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(session.ID)

	require.NoError(t, h.ListSteps(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]domain.ExecutionStep
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["steps"])
}

func TestCancelSession_NoRunningSessionReturns404(t *testing.T) {
	h, _, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/missing/cancel", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("missing")

	require.NoError(t, h.CancelSession(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
