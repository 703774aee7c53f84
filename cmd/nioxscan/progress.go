package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// ProgressPrinter displays a countdown while the scan runs.
//
// A ProgressPrinter is single-use. Start may be called at most once and
// Stop exactly once; failing to call Stop leaks a goroutine.
type ProgressPrinter struct {
	prefix    string
	duration  time.Duration
	startTime time.Time
	stopChan  chan struct{}
	done      chan struct{}
	started   atomic.Bool
	isTTY     bool
}

// NewCountdownProgressPrinter creates a progress printer counting down
// from duration. It stays silent when stdout is not a terminal.
func NewCountdownProgressPrinter(prefix string, duration time.Duration) *ProgressPrinter {
	return &ProgressPrinter{
		prefix:   prefix,
		duration: duration,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		isTTY:    term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressPrinter) Start() {
	if !p.started.CompareAndSwap(false, true) {
		panic("ProgressPrinter.Start called more than once")
	}
	p.startTime = time.Now()

	if !p.isTTY {
		close(p.done)
		return
	}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(progressUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopChan:
				fmt.Print(clearLineSequence)
				return
			case <-ticker.C:
				p.printLine()
			}
		}
	}()
}

// Stop clears the progress line and terminates the goroutine.
func (p *ProgressPrinter) Stop() {
	if !p.started.Load() {
		return
	}
	select {
	case <-p.stopChan:
	default:
		close(p.stopChan)
	}
	<-p.done
}

func (p *ProgressPrinter) printLine() {
	remaining := p.duration - time.Since(p.startTime)
	if remaining < 0 {
		remaining = 0
	}
	line := fmt.Sprintf("%s... %s remaining", p.prefix, remaining.Truncate(time.Second))

	// Clamp to the terminal width so the redraw never wraps.
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 && len(line) > width {
		line = line[:width-1]
	}
	fmt.Print(clearLineSequence + line)
}
