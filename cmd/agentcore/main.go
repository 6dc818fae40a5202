package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Lumicake/LumiAgent/internal/approval"
	"github.com/Lumicake/LumiAgent/internal/audit"
	"github.com/Lumicake/LumiAgent/internal/config"
	"github.com/Lumicake/LumiAgent/internal/eventbus"
	"github.com/Lumicake/LumiAgent/internal/llm"
	"github.com/Lumicake/LumiAgent/internal/loop"
	"github.com/Lumicake/LumiAgent/internal/memory"
	"github.com/Lumicake/LumiAgent/internal/policy"
	"github.com/Lumicake/LumiAgent/internal/repository"
	"github.com/Lumicake/LumiAgent/internal/screencap"
	"github.com/Lumicake/LumiAgent/internal/secrets"
	"github.com/Lumicake/LumiAgent/internal/tools"
	"github.com/Lumicake/LumiAgent/internal/tools/handlers"
	transporthttp "github.com/Lumicake/LumiAgent/internal/transport/http"
)

func main() {
	cfg := config.Load()

	log.Printf("Starting agentcore...")
	log.Printf("External HTTP Port: %d", cfg.ExternalHTTPPort)
	log.Printf("Internal HTTP Port: %d", cfg.InternalHTTPPort)
	log.Printf("Database: %s", cfg.DatabaseDSN)
	log.Printf("Default provider: %s", cfg.DefaultProvider)

	store, err := repository.NewSQLiteStore(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}
	defer store.Close()

	memStore, err := memory.Open(cfg.MemoryPath)
	if err != nil {
		log.Fatalf("failed to initialize memory store: %v", err)
	}

	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx)
	if err != nil {
		log.Fatalf("failed to initialize policy engine: %v", err)
	}

	auditJournal := audit.New(store)
	approvalQueue := approval.New(store, auditJournal)

	var capturer screencap.Capturer = screencap.Unavailable{}

	secretStore := secrets.NewInProcess()

	registry := tools.NewRegistry()
	h := handlers.New(memStore, capturer, secretStore)
	tools.Bootstrap(registry, h)

	// No real provider client is wired; the mock client answers
	// deterministically (it calls the first offered tool, or echoes the
	// last user message when no tools are offered) so the loop's
	// reason-act-observe cycle can be exercised end to end.
	llmClient := llm.NewMockClient()

	hub := eventbus.NewHub()
	hubStop := make(chan struct{})
	go hub.Run(hubStop)

	executionLoop := loop.New(store, auditJournal, policyEngine, approvalQueue, registry, llmClient, capturer, hub,
		cfg.NormalIterationCeiling, cfg.AgentModeCeiling, cfg.VisionSettleDelay, cfg.ApprovalTimeout)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go approvalQueue.RunExpirySweep(sweepCtx, cfg.ApprovalSweepCadence)

	httpHandler := transporthttp.NewHandler(store, executionLoop, approvalQueue, auditJournal, registry, hub)

	externalServer := echo.New()
	externalServer.HideBanner = true
	externalServer.Use(middleware.Logger())
	externalServer.Use(middleware.Recover())
	externalServer.Use(middleware.CORS())
	httpHandler.RegisterExternalRoutes(externalServer)

	internalServer := echo.New()
	internalServer.HideBanner = true
	internalServer.Use(middleware.Logger())
	internalServer.Use(middleware.Recover())
	httpHandler.RegisterInternalRoutes(internalServer)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ExternalHTTPPort)
		if err := externalServer.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start external server: %v", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.InternalHTTPPort)
		if err := internalServer.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start internal server: %v", err)
		}
	}()

	log.Printf("agentcore external API listening on port %d", cfg.ExternalHTTPPort)
	log.Printf("agentcore internal API listening on port %d", cfg.InternalHTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down agentcore...")

	sweepCancel()
	close(hubStop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := externalServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("failed to shut down external server gracefully: %v", err)
	}
	if err := internalServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("failed to shut down internal server gracefully: %v", err)
	}

	log.Println("agentcore stopped")
}
