// Package viewer implements ViewerModel: the diff viewport's scroll
// position, pane focus, view mode, hunk cursor, and dirty flag.
package viewer

import (
	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/highlight"
	"github.com/quickdiff/quickdiff/internal/textbuf"
)

// Pane names one side of the diff.
type Pane int

const (
	PaneOld Pane = iota
	PaneNew
)

// Model holds the state ViewerModel's operations mutate: scroll position,
// pane/view mode, focus, the open file's diff and highlight data, and the
// dirty flag the AppLoop's redraw gate consults.
type Model struct {
	ScrollY int
	ScrollX int

	viewMode ViewMode
	focus    Pane

	diff      *diffcore.Result
	highlight *highlight.Cache
	old       *textbuf.Buffer
	new       *textbuf.Buffer
	binary    bool

	hunkIndex  *diffcore.HunkIndex
	projection *diffcore.Projection

	dirty bool
}

// ViewMode mirrors diffcore.ViewMode; kept as its own type so callers don't
// need to import diffcore just to toggle it.
type ViewMode = diffcore.ViewMode

const (
	ViewFull      = diffcore.ViewFull
	ViewHunksOnly = diffcore.ViewHunksOnly
)

// New returns a Model with no file open.
func New() *Model {
	return &Model{viewMode: ViewFull, focus: PaneOld}
}

// OpenFile loads a new file's diff and highlight data, resetting scroll
// per spec's initial-viewport rule: position at the projection row of the
// first hunk's start_row, or 0 if there are no hunks. Never use
// "next hunk after row 0" — that would skip a hunk starting at row 0.
// ScrollX always resets to 0 on open. diff and hl are nil when binary is
// true: the caller skipped DiffEngine per spec's binary-skip rule, and
// there is nothing to scroll or project over.
func (m *Model) OpenFile(diff *diffcore.Result, hl *highlight.Cache, old, new *textbuf.Buffer, binary bool) {
	m.diff = diff
	m.highlight = hl
	m.old = old
	m.new = new
	m.binary = binary

	var hunks []diffcore.Hunk
	if diff != nil {
		hunks = diff.Hunks
	}
	m.hunkIndex = diffcore.NewHunkIndex(hunks)
	m.projection = projectionFor(diff, m.viewMode)

	m.ScrollX = 0
	if len(hunks) > 0 {
		m.ScrollY = m.projection.DiffRowToViewRow(hunks[0].StartRow)
		if m.ScrollY < 0 {
			m.ScrollY = 0
		}
	} else {
		m.ScrollY = 0
	}
	m.MarkDirty()
}

// IsBinary reports whether the currently open file was skipped by
// DiffEngine because either side's TextBuffer was flagged binary.
func (m *Model) IsBinary() bool { return m.binary }

func projectionFor(diff *diffcore.Result, mode ViewMode) *diffcore.Projection {
	if diff == nil {
		return diffcore.NewFullProjection(0)
	}
	if mode == ViewHunksOnly {
		return diffcore.NewHunksOnlyProjection(diff.Hunks)
	}
	return diffcore.NewFullProjection(len(diff.Rows))
}

// Diff returns the currently open file's diff result, or nil.
func (m *Model) Diff() *diffcore.Result { return m.diff }

// Highlight returns the currently open file's highlight cache, or nil.
func (m *Model) Highlight() *highlight.Cache { return m.highlight }

// Buffers returns the currently open file's old and new buffers.
func (m *Model) Buffers() (old, new *textbuf.Buffer) { return m.old, m.new }

// Projection returns the active row projection for the current view mode.
func (m *Model) Projection() *diffcore.Projection { return m.projection }

// ViewMode reports the current view mode.
func (m *Model) ViewMode() ViewMode { return m.viewMode }

// Focus reports the currently focused pane.
func (m *Model) Focus() Pane { return m.focus }

// Scroll adjusts scroll position by (rows, cols). ScrollY clamps to the
// projection's row count; ScrollX only clamps at zero, since the upper
// horizontal bound depends on rendered line width, which ViewerModel does
// not know — the renderer clamps that side.
func (m *Model) Scroll(rows, cols int) {
	if m.projection == nil {
		return
	}
	m.ScrollY = clamp(m.ScrollY+rows, 0, maxScroll(m.projection.ViewRowCount()))
	m.ScrollX += cols
	if m.ScrollX < 0 {
		m.ScrollX = 0
	}
	m.MarkDirty()
}

func maxScroll(rowCount int) int {
	if rowCount == 0 {
		return 0
	}
	return rowCount - 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToggleViewMode flips between Full and HunksOnly, rebuilding the
// projection and remapping ScrollY through the diff-row space so the same
// diff row stays selected across the toggle.
func (m *Model) ToggleViewMode() {
	if m.diff == nil {
		return
	}
	diffRow := m.projection.ViewRowToDiffRow(m.ScrollY)

	if m.viewMode == ViewFull {
		m.viewMode = ViewHunksOnly
	} else {
		m.viewMode = ViewFull
	}
	m.projection = projectionFor(m.diff, m.viewMode)

	if v := m.projection.DiffRowToViewRow(diffRow); v >= 0 {
		m.ScrollY = v
	} else {
		m.ScrollY = 0
	}
	m.MarkDirty()
}

// TogglePane switches pane focus to p.
func (m *Model) TogglePane(p Pane) {
	m.focus = p
	m.MarkDirty()
}

// CurrentHunkIndex returns the index into diff.Hunks containing the current
// scroll position's diff row, or -1 if none.
func (m *Model) CurrentHunkIndex() int {
	if m.hunkIndex == nil || m.projection == nil {
		return -1
	}
	diffRow := m.projection.ViewRowToDiffRow(m.ScrollY)
	if diffRow < 0 {
		return -1
	}
	return m.hunkIndex.HunkAtRow(diffRow)
}

// JumpNextHunk moves ScrollY to the next hunk's start row, if any.
func (m *Model) JumpNextHunk() {
	if m.hunkIndex == nil || m.projection == nil {
		return
	}
	diffRow := m.projection.ViewRowToDiffRow(m.ScrollY)
	next := m.hunkIndex.NextHunkRow(diffRow)
	if next == -1 {
		return
	}
	if v := m.projection.DiffRowToViewRow(next); v >= 0 {
		m.ScrollY = v
		m.MarkDirty()
	}
}

// JumpPrevHunk moves ScrollY to the previous hunk's start row, if any.
func (m *Model) JumpPrevHunk() {
	if m.hunkIndex == nil || m.projection == nil {
		return
	}
	diffRow := m.projection.ViewRowToDiffRow(m.ScrollY)
	prev := m.hunkIndex.PrevHunkRow(diffRow)
	if prev == -1 {
		return
	}
	if v := m.projection.DiffRowToViewRow(prev); v >= 0 {
		m.ScrollY = v
		m.MarkDirty()
	}
}

// MarkDirty sets the dirty flag, requesting a redraw on the next tick.
func (m *Model) MarkDirty() { m.dirty = true }

// ConsumeDirty reports and clears the dirty flag.
func (m *Model) ConsumeDirty() bool {
	d := m.dirty
	m.dirty = false
	return d
}
