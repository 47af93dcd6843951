package app

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/quickdiff/quickdiff/internal/source"
)

// TestAppLoopRendersFilesAndRespondsToQuit drives the full Model through
// bubbletea's test harness the way a real terminal session would: load the
// changed-file list, wait for it to render, then quit and confirm the
// program actually exits.
func TestAppLoopRendersFilesAndRespondsToQuit(t *testing.T) {
	dir := t.TempDir()
	m, err := NewModelFromPatch(dir, source.DiffSource{Mode: source.Stdin}, samplePatchFiles(), "default", nil)
	if err != nil {
		t.Fatalf("NewModelFromPatch: %v", err)
	}
	defer m.Close()

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("a.go")) && bytes.Contains(out, []byte("b.go"))
	})

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(0))
}

// TestAppLoopOpenSwitchesFocusToDiffPane exercises a files-pane -> diff-pane
// transition through real key events and checks that the rendered New-side
// header names the newly opened file.
func TestAppLoopOpenSwitchesFocusToDiffPane(t *testing.T) {
	dir := t.TempDir()
	m, err := NewModelFromPatch(dir, source.DiffSource{Mode: source.Stdin}, samplePatchFiles(), "default", nil)
	if err != nil {
		t.Fatalf("NewModelFromPatch: %v", err)
	}
	defer m.Close()

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("a.go"))
	})

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("New: a.go"))
	})

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(0))
}
