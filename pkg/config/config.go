package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names read by FromEnv.
const (
	EnvAPIKey        = "OPENAI_API_KEY"
	EnvVectorStoreID = "VECTOR_STORE_ID"
	EnvBaseURL       = "OPENAI_BASE_URL"
	EnvModel         = "OPENAI_MODEL"
	EnvLogFile       = "SUPPORT_AGENT_LOG_FILE"
)

const (
	DefaultAgentName = "Customer Support Agent"
	DefaultModel     = "gpt-4o"
	DefaultLogFile   = "support_agent.log"
	DefaultMaxTurns  = 10
)

// ErrMissingEnv reports a required environment variable that is unset.
var ErrMissingEnv = errors.New("not found in environment variables")

// Config holds all runtime configuration for the support agent.
type Config struct {
	APIKey        string
	VectorStoreID string
	BaseURL       string
	Model         string
	AgentName     string
	Instructions  string

	LogFile     string
	MaxTurns    int
	Verbose     bool
	Remember    bool
	VerifyStore bool
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Model:     DefaultModel,
		AgentName: DefaultAgentName,
		LogFile:   DefaultLogFile,
		MaxTurns:  DefaultMaxTurns,
	}
}

// FromEnv overlays environment values on cfg. Unset optional values keep
// whatever cfg already carries.
func FromEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.APIKey = strings.TrimSpace(getenv(EnvAPIKey))
	cfg.VectorStoreID = strings.TrimSpace(getenv(EnvVectorStoreID))
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvModel)); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFile)); v != "" {
		cfg.LogFile = v
	}
	return cfg
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.VectorStoreID = strings.TrimSpace(cfg.VectorStoreID)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.AgentName = strings.TrimSpace(cfg.AgentName)
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.AgentName == "" {
		cfg.AgentName = DefaultAgentName
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 1
	}
	return cfg
}

// Validate checks that both required secrets are present.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return fmt.Errorf("%s %w", EnvAPIKey, ErrMissingEnv)
	}
	if strings.TrimSpace(cfg.VectorStoreID) == "" {
		return fmt.Errorf("%s %w", EnvVectorStoreID, ErrMissingEnv)
	}
	return nil
}

// Profile mirrors the optional YAML agent profile.
type Profile struct {
	Name         string `yaml:"name"`
	Model        string `yaml:"model"`
	Instructions string `yaml:"instructions"`
}

// LoadProfile reads a YAML agent profile from path.
func LoadProfile(path string) (Profile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(content, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// ApplyProfile overrides agent identity fields with non-empty profile values.
func ApplyProfile(cfg Config, p Profile) Config {
	if v := strings.TrimSpace(p.Name); v != "" {
		cfg.AgentName = v
	}
	if v := strings.TrimSpace(p.Model); v != "" {
		cfg.Model = v
	}
	if strings.TrimSpace(p.Instructions) != "" {
		cfg.Instructions = p.Instructions
	}
	return cfg
}
