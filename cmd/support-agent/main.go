// Package main runs the customer-support chatbot REPL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/minhyannv/support-agent-go/pkg/agent"
	configpkg "github.com/minhyannv/support-agent-go/pkg/config"
	loggerpkg "github.com/minhyannv/support-agent-go/pkg/logger"
	"github.com/minhyannv/support-agent-go/pkg/ui"
)

// main is the program entry point.
func main() {
	_ = godotenv.Load()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	code := run(os.Args[1:], os.Getenv, signals, os.Stdin, os.Stdout, os.Stderr)
	signal.Stop(signals)
	os.Exit(code)
}

// run wires configuration, logging and the agent session, then hands over
// to the REPL. It returns the process exit code.
func run(args []string, getenv func(string) string, signals <-chan os.Signal, in io.Reader, out, errOut io.Writer) int {
	console := ui.New(out)

	cfg, err := parseCLIConfig(args, getenv, errOut)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		console.Fatal(fmt.Sprintf("Error: %v", err))
		return 1
	}
	if err := configpkg.Validate(cfg); err != nil {
		console.Fatal(fmt.Sprintf("Error: %v", err))
		return 1
	}

	appLogger, err := loggerpkg.New(loggerpkg.Options{
		File:    cfg.LogFile,
		Console: errOut,
		Verbose: cfg.Verbose,
		Name:    "support-agent",
	})
	if err != nil {
		console.Fatal(fmt.Sprintf("Error: %v", err))
		return 1
	}
	defer appLogger.Close()
	defer loggerpkg.Info(appLogger, "application shutdown", nil)

	newSession := func(ctx context.Context) (conversation, error) {
		s, err := agent.New(ctx, cfg, agent.WithLogger(appLogger), agent.WithHandoffNotifier(console))
		if err != nil {
			return nil, err
		}
		if cfg.VerifyStore {
			if err := s.VerifyKnowledgeStore(ctx); err != nil {
				return nil, err
			}
		}
		console.Success("Agent initialized successfully")
		return s, nil
	}

	console.Welcome()
	console.Status("\nInitializing support agent...")

	stop := console.StartSpinner("Setting up AI agent...")
	res, interrupted := runInterruptible(signals, func(ctx context.Context) sessionResult {
		s, err := newSession(ctx)
		return sessionResult{session: s, err: err}
	})
	stop()
	if interrupted {
		console.Exiting("\n\nExiting... Thank you for using Customer Support!")
		return 0
	}
	if res.err != nil {
		loggerpkg.Error(appLogger, "failed to initialize agent", map[string]any{"error": res.err.Error()})
		console.Fatal(fmt.Sprintf("Failed to initialize agent: %v", res.err))
		return 1
	}

	console.Ready("\nReady to help! Ask me anything.\n")

	if err := runREPL(res.session, replOptions{
		Console:    console,
		Logger:     appLogger,
		Verbose:    cfg.Verbose,
		Signals:    signals,
		NewSession: newSession,
	}, in); err != nil {
		loggerpkg.Error(appLogger, "fatal error", map[string]any{"error": err.Error()})
		return 1
	}
	return 0
}
