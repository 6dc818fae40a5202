package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/approval"
	"github.com/Lumicake/LumiAgent/internal/audit"
	"github.com/Lumicake/LumiAgent/internal/eventbus"
	"github.com/Lumicake/LumiAgent/internal/llm"
	"github.com/Lumicake/LumiAgent/internal/loop"
	"github.com/Lumicake/LumiAgent/internal/policy"
	"github.com/Lumicake/LumiAgent/internal/repository"
	"github.com/Lumicake/LumiAgent/internal/tools"
)

func newTestHandler(t *testing.T) (*Handler, repository.Store, *approval.Queue) {
	t.Helper()
	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	j := audit.New(store)
	pol, err := policy.NewEngine(context.Background())
	require.NoError(t, err)
	approvals := approval.New(store, j)
	registry := tools.NewRegistry()
	hub := eventbus.NewHub()

	executionLoop := loop.New(store, j, pol, approvals, registry, llm.NewMockClient(), nil, hub, 10, 30, 0, time.Minute)

	h := NewHandler(store, executionLoop, approvals, j, registry, hub)
	return h, store, approvals
}
