// Package progress shows the "Thinking..." indicator in the terminal
// client while a request is in flight.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner indicates that a long-running call is in progress.
type Spinner interface {
	Start(message string)
	Stop()
}

// NewSpinner returns a TerminalSpinner writing to w, or a PlainSpinner if
// the CI environment variable is set.
func NewSpinner(w io.Writer) Spinner {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &PlainSpinner{w: w}
	}
	return &TerminalSpinner{w: w}
}

// TerminalSpinner animates an indeterminate progress bar until stopped.
type TerminalSpinner struct {
	w io.Writer

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	done chan struct{}
	wg   sync.WaitGroup
}

func (s *TerminalSpinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		return
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.w),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	s.done = make(chan struct{})

	s.wg.Add(1)
	go func(bar *progressbar.ProgressBar, done <-chan struct{}) {
		defer s.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}(s.bar, s.done)
}

func (s *TerminalSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar == nil {
		return
	}

	close(s.done)
	s.wg.Wait()
	_ = s.bar.Finish()
	s.bar = nil
}

// PlainSpinner prints a single line, suitable for CI logs.
type PlainSpinner struct {
	w io.Writer
}

func (s *PlainSpinner) Start(message string) {
	fmt.Fprintln(s.w, message)
}

func (s *PlainSpinner) Stop() {}
