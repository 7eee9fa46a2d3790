package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minhyannv/support-agent-go/pkg/agent"
	loggerpkg "github.com/minhyannv/support-agent-go/pkg/logger"
	"github.com/minhyannv/support-agent-go/pkg/ui"
)

// conversation is the live agent session the REPL talks to.
type conversation interface {
	Send(ctx context.Context, input string) agent.Reply
	ID() string
}

// sessionFactory builds a fresh conversation; used for the "new" command.
type sessionFactory func(ctx context.Context) (conversation, error)

// replOptions configures REPL behavior.
type replOptions struct {
	Console    *ui.Console
	Logger     loggerpkg.Logger
	Verbose    bool
	Signals    <-chan os.Signal
	NewSession sessionFactory
}

type command int

const (
	commandNone command = iota
	commandExit
	commandClear
	commandNew
)

const interruptedNotice = "\nConversation interrupted. Type 'exit' to quit.\n"

// classifyCommand matches the whole line case-insensitively.
func classifyCommand(input string) command {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", "bye", "goodbye":
		return commandExit
	case "clear":
		return commandClear
	case "new":
		return commandNew
	default:
		return commandNone
	}
}

type readResult struct {
	line string
	eof  bool
	err  error
}

// lineReader reads one line per request so input is never consumed ahead
// of the reply being displayed.
type lineReader struct {
	requests chan struct{}
	lines    chan readResult
}

func newLineReader(in io.Reader) *lineReader {
	r := &lineReader{
		requests: make(chan struct{}),
		lines:    make(chan readResult, 1),
	}
	go func() {
		scanner := bufio.NewScanner(in)
		for range r.requests {
			if scanner.Scan() {
				r.lines <- readResult{line: scanner.Text()}
				continue
			}
			r.lines <- readResult{eof: true, err: scanner.Err()}
			return
		}
	}()
	return r
}

type turnOutcome struct {
	reply agent.Reply
	err   error
}

type sessionResult struct {
	session conversation
	err     error
}

// runREPL starts an interactive loop over session until exit or end of input.
// The only error it returns is a failure to rebuild the session, which is fatal.
func runREPL(session conversation, opts replOptions, in io.Reader) error {
	if session == nil {
		return errors.New("session is required")
	}
	if in == nil {
		return errors.New("input reader is required")
	}
	if opts.Console == nil {
		opts.Console = ui.New(io.Discard)
	}
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}
	console := opts.Console

	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl start", map[string]any{"session": session.ID()})

	reader := newLineReader(in)
	defer close(reader.requests)

	needPrompt := true
	pending := false
	for {
		if needPrompt {
			console.Prompt()
			needPrompt = false
		}
		if !pending {
			reader.requests <- struct{}{}
			pending = true
		}

		var res readResult
		select {
		case <-opts.Signals:
			console.Warn(interruptedNotice)
			needPrompt = true
			continue
		case res = <-reader.lines:
			pending = false
			needPrompt = true
		}

		if res.eof {
			console.Notice("\nThank you for using Customer Support. Goodbye!")
			if res.err != nil {
				return fmt.Errorf("read input: %w", res.err)
			}
			return nil
		}

		input := strings.TrimSpace(res.line)
		if input == "" {
			continue
		}

		switch classifyCommand(input) {
		case commandExit:
			console.Notice("\nThank you for using Customer Support. Goodbye!")
			return nil
		case commandClear:
			console.Clear()
			console.Welcome()
			continue
		case commandNew:
			next, err := renewSession(session, opts)
			if err != nil {
				return err
			}
			if next != nil {
				session = next
			}
			continue
		}

		runTurn(session, input, opts)
	}
}

// renewSession discards the current session and builds a new one. A nil
// session with a nil error means the rebuild was interrupted.
func renewSession(current conversation, opts replOptions) (conversation, error) {
	if opts.NewSession == nil {
		return nil, errors.New("session factory is required")
	}
	res, interrupted := runInterruptible(opts.Signals, func(ctx context.Context) sessionResult {
		s, err := opts.NewSession(ctx)
		return sessionResult{session: s, err: err}
	})
	if interrupted {
		opts.Console.Warn(interruptedNotice)
		return nil, nil
	}
	if res.err != nil {
		loggerpkg.Error(opts.Logger, "failed to initialize agent", map[string]any{"error": res.err.Error()})
		opts.Console.Fatal(fmt.Sprintf("Failed to initialize agent: %v", res.err))
		return nil, fmt.Errorf("initialize agent: %w", res.err)
	}
	loggerpkg.Info(opts.Logger, "started new conversation", map[string]any{
		"previous": current.ID(),
		"session":  res.session.ID(),
	})
	opts.Console.Success("Started new conversation")
	opts.Console.Newline()
	return res.session, nil
}

// runTurn sends one message and prints the reply. Interrupts and unexpected
// failures are reported and never end the loop.
func runTurn(session conversation, input string, opts replOptions) {
	console := opts.Console

	stop := console.StartSpinner("Thinking...")
	out, interrupted := runInterruptible(opts.Signals, func(ctx context.Context) (out turnOutcome) {
		defer func() {
			if r := recover(); r != nil {
				out = turnOutcome{err: fmt.Errorf("%v", r)}
			}
		}()
		return turnOutcome{reply: session.Send(ctx, input)}
	})
	stop()

	switch {
	case interrupted:
		loggerpkg.Warn(opts.Logger, "turn interrupted", map[string]any{"session": session.ID()})
		console.Warn(interruptedNotice)
	case out.err != nil:
		loggerpkg.Error(opts.Logger, "error in conversation loop", map[string]any{
			"session": session.ID(),
			"error":   out.err.Error(),
		})
		console.Error(fmt.Sprintf("An error occurred: %v\n", out.err))
	default:
		if out.reply.Err != nil {
			loggerpkg.Debug(opts.Verbose, opts.Logger, "turn failed", map[string]any{"session": session.ID()})
		}
		console.Reply(out.reply.Text)
	}
}
