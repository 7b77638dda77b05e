// Package ui holds terminal feedback shared by the popup commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Spinner shows activity while a tracking service call is in flight
type Spinner struct {
	w       io.Writer
	frames  []string
	message string
	animate bool
	active  bool
	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a spinner writing to w. It only animates when w is
// a terminal and NO_COLOR is unset; otherwise it prints the message once.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
		animate: IsTerminal(w) && os.Getenv("NO_COLOR") == "",
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins spinning
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	if !s.animate {
		fmt.Fprintf(s.w, "%s...\n", s.message)
		close(s.stopped)
		return
	}

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i = (i + 1) % len(s.frames) {
			select {
			case <-s.done:
				fmt.Fprint(s.w, "\r\033[K")
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", s.frames[i], s.message)
				s.mu.Unlock()
			}
		}
	}()
}

// Stop halts the spinner and prints finalMessage when it is not empty
func (s *Spinner) Stop(finalMessage string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	close(s.done)
	<-s.stopped

	if finalMessage != "" {
		fmt.Fprintln(s.w, finalMessage)
	}
}

// Update changes the spinner message while it is running
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
