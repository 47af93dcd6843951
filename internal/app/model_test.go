package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quickdiff/quickdiff/internal/comments"
	"github.com/quickdiff/quickdiff/internal/patch"
	"github.com/quickdiff/quickdiff/internal/source"
	"github.com/quickdiff/quickdiff/internal/worker"
)

func samplePatchFiles() []patch.File {
	return []patch.File{
		{
			Path:    "a.go",
			Kind:    source.Modified,
			OldText: "package a\n\nfunc A() {}\n",
			NewText: "package a\n\nfunc A() { return }\n",
		},
		{
			Path:    "b.go",
			Kind:    source.Added,
			OldText: "",
			NewText: "package b\n",
		},
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	m, err := NewModelFromPatch(dir, source.DiffSource{Mode: source.Stdin}, samplePatchFiles(), "default", nil)
	if err != nil {
		t.Fatalf("NewModelFromPatch: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func drainFilesLoaded(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.loadFilesCmd()
	msg := cmd()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewModelFromPatchHasNoWatcher(t *testing.T) {
	m := newTestModel(t)
	if m.watcher != nil {
		t.Fatalf("patch-backed model should not start a filesystem watcher")
	}
}

func TestFilesLoadedMsgSelectsFirstFileAndSortsByPath(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)

	if len(m.files) != 2 {
		t.Fatalf("files = %d, want 2", len(m.files))
	}
	if m.files[0].Path != "a.go" || m.files[1].Path != "b.go" {
		t.Fatalf("files not sorted by path: %v", m.files)
	}
	if m.selected != 0 {
		t.Fatalf("selected = %d, want 0", m.selected)
	}
}

func TestWithInitialFileOverridesDefaultSelection(t *testing.T) {
	m := newTestModel(t)
	m = m.WithInitialFile("b.go")
	m = drainFilesLoaded(t, m)

	if m.selected != 1 {
		t.Fatalf("selected = %d, want 1 (b.go)", m.selected)
	}
}

func TestToggleFocusSwitchesBetweenFilesAndDiff(t *testing.T) {
	m := newTestModel(t)
	if m.focus != focusFiles {
		t.Fatalf("initial focus = %v, want focusFiles", m.focus)
	}

	next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.focus != focusDiff {
		t.Fatalf("focus after tab = %v, want focusDiff", m.focus)
	}

	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.focus != focusFiles {
		t.Fatalf("focus after second tab = %v, want focusFiles", m.focus)
	}
}

func TestQuitKeyReturnsQuitCmd(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected a non-nil quit command")
	}
}

func TestFilesKeyNavigationClampsAtBounds(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)

	next, _ := m.handleFilesKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = next.(Model)
	if m.fileCursor != 1 {
		t.Fatalf("fileCursor = %d, want 1", m.fileCursor)
	}

	next, _ = m.handleFilesKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = next.(Model)
	if m.fileCursor != 1 {
		t.Fatalf("fileCursor past end = %d, want clamped to 1", m.fileCursor)
	}

	next, _ = m.handleFilesKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = next.(Model)
	if m.fileCursor != 0 {
		t.Fatalf("fileCursor = %d, want 0", m.fileCursor)
	}
}

func TestToggleViewedPersistsReviewState(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)

	path := m.files[m.fileCursor].Path
	if m.reviewState.IsViewed(m.repoRoot, path) {
		t.Fatalf("file should start unviewed")
	}

	next, _ := m.handleFilesKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = next.(Model)
	if !m.reviewState.IsViewed(m.repoRoot, path) {
		t.Fatalf("toggling viewed should mark the file viewed")
	}

	next, _ = m.handleFilesKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = next.(Model)
	if m.reviewState.IsViewed(m.repoRoot, path) {
		t.Fatalf("toggling viewed again should unmark the file")
	}
}

func TestOpenSubmitsDiffRequestAndSwitchesFocus(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)

	next, _ := m.handleFilesKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.focus != focusDiff {
		t.Fatalf("focus after open = %v, want focusDiff", m.focus)
	}
	if !m.loadingDiff {
		t.Fatalf("expected loadingDiff after open")
	}
}

func TestHandleDiffLoadedIgnoresStaleResponse(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)
	m.lastReqID = 5
	m.loadingDiff = true

	next, _ := m.handleDiffLoaded(worker.Response{RequestID: 3})
	m2 := next.(Model)
	if !m2.loadingDiff {
		t.Fatalf("stale response should leave loadingDiff untouched")
	}
}

func TestAlertExpiresAfterDuration(t *testing.T) {
	m := newTestModel(t)
	m.setAlert("hello")
	if m.alertMsg == "" {
		t.Fatalf("setAlert should set alertMsg")
	}

	m.alertUntil = time.Now().Add(-time.Second)
	next, _ := m.Update(alertTickMsg{})
	m2 := next.(Model)
	if m2.alertMsg != "" {
		t.Fatalf("expired alert should be cleared")
	}
}

func TestCopyPathCmdReturnsStatusMsg(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)

	cmd := m.copyPathCmd(m.files[0].Path)
	msg := cmd()
	status, ok := msg.(statusMsg)
	if !ok {
		t.Fatalf("copyPathCmd did not return a statusMsg: %T", msg)
	}
	if status == "" {
		t.Fatalf("expected a non-empty status message")
	}
}

func TestOpenEditorCmdWithNoEditorOnPathReturnsStatus(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)
	m.editorChain = nil // resolves to "" on every platform

	cmd := m.openEditorCmd()
	if cmd == nil {
		t.Fatalf("expected a non-nil command even with no editor configured")
	}
	msg := cmd()
	status, ok := msg.(statusMsg)
	if !ok {
		t.Fatalf("expected statusMsg, got %T", msg)
	}
	if status != "no editor found on PATH" {
		t.Fatalf("status = %q, want %q", status, "no editor found on PATH")
	}
}

func TestFuzzyFilterNarrowsFileListAndOpenSelectsFilteredFile(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)

	next, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = next.(Model)
	if !m.filterActive {
		t.Fatalf("expected filterActive after pressing /")
	}
	if cmd == nil {
		t.Fatalf("expected startFilterInput to return a focus command")
	}

	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	m = next.(Model)
	if m.filterQuery != "b" {
		t.Fatalf("filterQuery = %q, want %q", m.filterQuery, "b")
	}

	visible := m.visibleFileIndices()
	if len(visible) != 1 || m.files[visible[0]].Path != "b.go" {
		t.Fatalf("expected filter to narrow to b.go, got indices %v", visible)
	}

	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.filterActive {
		t.Fatalf("expected filterActive to clear after Enter")
	}

	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.files[m.selected].Path != "b.go" {
		t.Fatalf("Open after filtering selected %q, want b.go", m.files[m.selected].Path)
	}
}

func TestFuzzyFilterEscClearsQueryAndRestoresFullList(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)

	next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = next.(Model)
	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	m = next.(Model)

	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.filterActive || m.filterQuery != "" {
		t.Fatalf("expected Esc to close filter and clear query")
	}
	if len(m.visibleFileIndices()) != len(m.files) {
		t.Fatalf("expected full file list restored after Esc")
	}
}

func TestViewCommentsOpensOverlayAndJumpSelectsFile(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)
	m.commentList = []comments.Comment{
		{ID: 1, Path: "b.go", Message: "needs a test"},
	}

	next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'C'}})
	m = next.(Model)
	if !m.commentsOverlayActive {
		t.Fatalf("expected commentsOverlayActive after pressing C")
	}

	next, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.commentsOverlayActive {
		t.Fatalf("expected overlay to close after jumping to a comment")
	}
	if m.files[m.selected].Path != "b.go" {
		t.Fatalf("expected jump to select b.go, got %q", m.files[m.selected].Path)
	}
	if m.focus != focusDiff {
		t.Fatalf("expected focus to move to diff pane after jump")
	}
}

func TestViewCommentsWithNoCommentsShowsAlertInsteadOfOverlay(t *testing.T) {
	m := newTestModel(t)
	m = drainFilesLoaded(t, m)

	next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'C'}})
	m = next.(Model)
	if m.commentsOverlayActive {
		t.Fatalf("expected no overlay when there are no comments")
	}
	if m.alertMsg == "" {
		t.Fatalf("expected an alert explaining there are no comments")
	}
}
