package ui

import (
	"fmt"
	"io"
	"time"
)

// SpinnerFrames contains the braille spinner animation frames
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// StartSpinner animates message until the returned stop function is called.
// On a non-terminal console it does nothing. Stop blocks until the line is
// cleared and is safe to call more than once.
func (c *Console) StartSpinner(message string) func() {
	if !c.interactive {
		return func() {}
	}

	c.mu.Lock()
	if c.spinning {
		c.mu.Unlock()
		return func() {}
	}
	c.spinning = true
	c.mu.Unlock()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		frame := 0
		for {
			c.mu.Lock()
			_, _ = fmt.Fprintf(c.out, "\r\033[K%s %s", c.st.success.Render(SpinnerFrames[frame]), c.st.success.Render(message))
			c.mu.Unlock()

			select {
			case <-stop:
				c.mu.Lock()
				_, _ = io.WriteString(c.out, "\r\033[K")
				c.spinning = false
				c.mu.Unlock()
				return
			case <-ticker.C:
				frame = (frame + 1) % len(SpinnerFrames)
			}
		}
	}()

	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(stop)
		<-done
	}
}
