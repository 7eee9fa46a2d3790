package main

import (
	"flag"
	"io"
	"strings"

	configpkg "github.com/minhyannv/support-agent-go/pkg/config"
)

// parseCLIConfig loads env + flags into runtime config. Required secrets are
// checked separately so the caller decides how to fail.
func parseCLIConfig(args []string, getenv func(string) string, stderr io.Writer) (configpkg.Config, error) {
	defaults := configpkg.DefaultConfig()

	fs := flag.NewFlagSet("support-agent", flag.ContinueOnError)
	fs.SetOutput(stderr)
	profilePath := fs.String("profile", "", "YAML agent profile overriding name, model and instructions")
	maxTurns := fs.Int("max_turns", defaults.MaxTurns, "Max tool-call round trips per message")
	verbose := fs.Bool("verbose", defaults.Verbose, "Verbose debug logging")
	logFile := fs.String("log_file", "", "Append-only log file (default $SUPPORT_AGENT_LOG_FILE or support_agent.log)")
	remember := fs.Bool("remember", defaults.Remember, "Carry conversation context between messages until 'new'")
	verifyStore := fs.Bool("verify_store", defaults.VerifyStore, "Check the vector store exists before the first prompt")
	if err := fs.Parse(args); err != nil {
		return configpkg.Config{}, err
	}

	cfg := configpkg.FromEnv(defaults, getenv)
	if path := strings.TrimSpace(*profilePath); path != "" {
		profile, err := configpkg.LoadProfile(path)
		if err != nil {
			return configpkg.Config{}, err
		}
		cfg = configpkg.ApplyProfile(cfg, profile)
	}
	cfg.MaxTurns = *maxTurns
	cfg.Verbose = *verbose
	cfg.Remember = *remember
	cfg.VerifyStore = *verifyStore
	if v := strings.TrimSpace(*logFile); v != "" {
		cfg.LogFile = v
	}
	return configpkg.Normalize(cfg), nil
}
