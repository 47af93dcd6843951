package app

import (
	"fmt"
	"os"
)

// TermGuard performs best-effort terminal restoration if a panic escapes
// the bubbletea event loop before its own recovery path runs, per the
// propagation policy's RAII-guard requirement: the terminal must be
// restored on every exit path, including panic.
type TermGuard struct {
	closed bool
}

// NewTermGuard returns a guard ready to protect one program run.
func NewTermGuard() *TermGuard {
	return &TermGuard{}
}

// Close restores the terminal: exits the alternate screen buffer and shows
// the cursor. Safe to call more than once.
func (g *TermGuard) Close() {
	if g.closed {
		return
	}
	g.closed = true
	fmt.Fprint(os.Stdout, "\x1b[?1049l\x1b[?25h")
}

// RecoverTerminal restores the terminal and, when r is non-nil (a recovered
// panic value), writes a single-line diagnostic to stderr.
func (g *TermGuard) RecoverTerminal(r any) {
	g.Close()
	if r != nil {
		fmt.Fprintf(os.Stderr, "quickdiff: recovered from panic: %v\n", r)
	}
}
