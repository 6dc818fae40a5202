// Package config provides environment-driven configuration for the
// agent execution core.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

// Config holds process-wide configuration recognized per the
// configuration surface: ports, storage DSN, timeouts, default
// provider and default security policy.
type Config struct {
	ExternalHTTPPort int
	InternalHTTPPort int

	DatabaseDSN string
	MemoryPath  string

	DefaultProvider  string
	DefaultOllamaURL string

	NormalIterationCeiling int
	AgentModeCeiling       int
	ApprovalTimeout        time.Duration
	ApprovalSweepCadence   time.Duration
	ToolTimeout            time.Duration
	VisionSettleDelay      time.Duration

	LogLevel string

	DefaultSecurityPolicy domain.SecurityPolicy
}

// Load loads configuration from the environment, first merging in a
// .env file at the process working directory if one is present. A
// missing .env file is not an error.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: config: failed to load .env: %v", err)
	}

	return &Config{
		ExternalHTTPPort: getEnvInt("AGENTCORE_EXTERNAL_PORT", 8080),
		InternalHTTPPort: getEnvInt("AGENTCORE_INTERNAL_PORT", 8081),

		DatabaseDSN: getEnv("AGENTCORE_DATABASE_DSN", "file:agentcore.db?cache=shared&mode=rwc"),
		MemoryPath:  getEnv("AGENTCORE_MEMORY_PATH", defaultMemoryPath()),

		DefaultProvider:  getEnv("AGENTCORE_DEFAULT_PROVIDER", "ollama"),
		DefaultOllamaURL: getEnv("AGENTCORE_OLLAMA_URL", "http://localhost:11434"),

		NormalIterationCeiling: getEnvInt("AGENTCORE_NORMAL_CEILING", 10),
		AgentModeCeiling:       getEnvInt("AGENTCORE_AGENT_MODE_CEILING", 30),
		ApprovalTimeout:        time.Duration(getEnvInt("AGENTCORE_APPROVAL_TIMEOUT_SECS", 60)) * time.Second,
		ApprovalSweepCadence:   time.Duration(getEnvInt("AGENTCORE_APPROVAL_SWEEP_SECS", 5)) * time.Second,
		ToolTimeout:            time.Duration(getEnvInt("AGENTCORE_TOOL_TIMEOUT_SECS", 30)) * time.Second,
		VisionSettleDelay:      time.Duration(getEnvInt("AGENTCORE_VISION_SETTLE_MS", 900)) * time.Millisecond,

		LogLevel: getEnv("AGENTCORE_LOG_LEVEL", "info"),

		DefaultSecurityPolicy: domain.DefaultSecurityPolicy(),
	}
}

func defaultMemoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return dir + "/agentcore/memory.json"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
