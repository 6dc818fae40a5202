// Package main provides a simple CLI client for driving an agentcore
// session over HTTP and printing its step stream once it completes.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

type runSessionRequest struct {
	Agent     domain.Agent `json:"agent"`
	Prompt    string       `json:"prompt"`
	AgentMode bool         `json:"agent_mode"`
}

func main() {
	addr := flag.String("addr", "http://localhost:8081", "agentcore internal API address (session run/steps)")
	agentID := flag.String("agent-id", "agent_cli", "agent id to run as")
	name := flag.String("name", "cli-agent", "agent display name")
	provider := flag.String("provider", "ollama", "model provider")
	model := flag.String("model", "llama3", "model name")
	systemPrompt := flag.String("system", "", "system instructions")
	temperature := flag.Float64("temperature", 0.7, "sampling temperature")
	prompt := flag.String("prompt", "", "user prompt to run")
	agentMode := flag.Bool("agent-mode", false, "run with the higher iteration ceiling and vision feedback")
	flag.Parse()

	log.SetFlags(log.Ltime)

	if *prompt == "" {
		log.Fatal("-prompt is required")
	}

	agent := domain.Agent{
		ID:                 *agentID,
		Name:               *name,
		Provider:           *provider,
		Model:              *model,
		SystemInstructions: *systemPrompt,
		Temperature:        domain.ClampTemperature(*temperature),
		MaxTokens:          2048,
		Policy:             domain.DefaultSecurityPolicy(),
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}

	req := runSessionRequest{Agent: agent, Prompt: *prompt, AgentMode: *agentMode}
	body, err := json.Marshal(req)
	if err != nil {
		log.Fatalf("failed to marshal request: %v", err)
	}

	fmt.Printf("Running session against %s as agent %q...\n", *addr, *agentID)

	resp, err := http.Post(*addr+"/v1/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("agentcore returned %s: %s", resp.Status, string(data))
	}

	var session domain.ExecutionSession
	if err := json.Unmarshal(data, &session); err != nil {
		log.Fatalf("failed to unmarshal session: %v", err)
	}

	fmt.Printf("\nSession %s finished: status=%s iterations=%d\n", session.ID, session.Status, session.Iterations)
	if session.Result != nil {
		fmt.Printf("Output: %s\n", session.Result.Output)
		if session.Result.Error != "" {
			fmt.Printf("Error: %s\n", session.Result.Error)
		}
	}

	printSteps(*addr, session.ID)
}

func printSteps(addr, sessionID string) {
	resp, err := http.Get(addr + "/v1/sessions/" + sessionID + "/steps")
	if err != nil {
		log.Printf("failed to fetch steps: %v", err)
		return
	}
	defer resp.Body.Close()

	var payload struct {
		Steps []domain.ExecutionStep `json:"steps"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("failed to decode steps: %v", err)
		return
	}

	fmt.Println("\nStep history:")
	for _, step := range payload.Steps {
		fmt.Printf("  [%s] %s\n", step.Kind, string(step.Payload))
	}
}
