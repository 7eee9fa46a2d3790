package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Console writes styled output for the support REPL. Writes are serialized
// so the spinner goroutine and tool callbacks never interleave a line.
type Console struct {
	out         io.Writer
	term        *termenv.Output
	st          styles
	interactive bool

	mu       sync.Mutex
	spinning bool
}

// New builds a console for out. Colors and the spinner are enabled only when
// out is a terminal.
func New(out io.Writer) *Console {
	if out == nil {
		out = io.Discard
	}
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	r := lipgloss.NewRenderer(out)
	return &Console{
		out:         out,
		term:        termenv.NewOutput(out),
		st:          newStyles(r),
		interactive: interactive,
	}
}

// Interactive reports whether the console writes to a terminal.
func (c *Console) Interactive() bool {
	return c.interactive
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spinning {
		_, _ = io.WriteString(c.out, "\r\033[K")
	}
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// line renders msg in st, keeping leading and trailing blank lines
// outside the styled block so they are not padded.
func (c *Console) line(st lipgloss.Style, msg string) {
	core := strings.TrimLeft(msg, "\n")
	lead := len(msg) - len(core)
	trimmed := strings.TrimRight(core, "\n")
	trail := len(core) - len(trimmed)
	c.printf("%s%s\n%s", strings.Repeat("\n", lead), st.Render(trimmed), strings.Repeat("\n", trail))
}

// Welcome draws the welcome panel with the command list.
func (c *Console) Welcome() {
	var sb strings.Builder
	sb.WriteString(c.st.bold.Render("Welcome") + "\n")
	sb.WriteString(c.st.title.Render("Customer Support Assistant") + "\n")
	sb.WriteString(c.st.rule.Render(strings.Repeat("━", ruleWidth)) + "\n")
	sb.WriteString("Type your questions to get help from our AI assistant.\n")
	sb.WriteString(c.st.bold.Render("Commands:") + "\n")
	sb.WriteString("  • Type 'exit' or 'quit' to end the conversation\n")
	sb.WriteString("  • Press Ctrl+C to interrupt a reply\n")
	sb.WriteString("  • Type 'clear' to clear the screen\n")
	sb.WriteString("  • Type 'new' to start a new conversation")
	c.printf("%s\n", c.st.welcomePanel.Render(sb.String()))
}

// Clear clears the terminal screen and moves the cursor home.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term.ClearScreen()
}

// NotifyHandoff draws the human-handoff panel for reason.
func (c *Console) NotifyHandoff(reason string) {
	body := strings.Join([]string{
		c.st.bold.Render("Human Agent Required"),
		c.st.warnBold.Render(SymbolHandoff + " HANDOFF TRIGGERED"),
		c.st.plain.Render("Reason: " + reason),
		c.st.dim.Render("A human agent will be with you shortly."),
	}, "\n")
	c.printf("\n%s\n", c.st.handoffPanel.Render(body))
}

// Prompt writes the input prompt without a trailing newline.
func (c *Console) Prompt() {
	c.printf("%s: ", c.st.prompt.Render("You"))
}

// Reply writes one labeled assistant reply.
func (c *Console) Reply(text string) {
	c.printf("\n%s %s\n\n", c.st.assistant.Render("Assistant:"), text)
}

// Status writes an informational line.
func (c *Console) Status(msg string) {
	c.line(c.st.status, msg)
}

// Success writes a check-marked confirmation line.
func (c *Console) Success(msg string) {
	c.printf("%s\n", c.st.success.Render(SymbolSuccess+" "+msg))
}

// Notice writes a highlighted line, used for farewells.
func (c *Console) Notice(msg string) {
	c.line(c.st.title, msg)
}

// Ready writes the green line shown once the agent can take questions.
func (c *Console) Ready(msg string) {
	c.line(c.st.success, msg)
}

// Warn writes a warning line.
func (c *Console) Warn(msg string) {
	c.line(c.st.warn, msg)
}

// Exiting writes the bold warning shown on forced exit.
func (c *Console) Exiting(msg string) {
	c.line(c.st.warnBold, msg)
}

// Error writes a recoverable error line.
func (c *Console) Error(msg string) {
	c.line(c.st.err, msg)
}

// Fatal writes a fatal error line.
func (c *Console) Fatal(msg string) {
	c.line(c.st.errBold, msg)
}

// Newline writes an empty line.
func (c *Console) Newline() {
	c.printf("\n")
}
