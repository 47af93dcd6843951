package viewer

import (
	"testing"

	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/highlight"
	"github.com/quickdiff/quickdiff/internal/textbuf"
)

func computeDiff(t *testing.T, oldText, newText string) *diffcore.Result {
	t.Helper()
	e := diffcore.New()
	return e.Compute(textbuf.FromBytes([]byte(oldText)), textbuf.FromBytes([]byte(newText)), 3)
}

func TestOpenFilePositionsScrollAtFirstHunk(t *testing.T) {
	old := "a\nb\nc\nd\ne\nf\ng\nh\n"
	new := "a\nb\nc\nX\ne\nf\ng\nh\n"
	d := computeDiff(t, old, new)
	if len(d.Hunks) == 0 {
		t.Fatalf("expected at least one hunk")
	}

	m := New()
	m.OpenFile(d, &highlight.Cache{}, textbuf.FromBytes([]byte(old)), textbuf.FromBytes([]byte(new)), false)

	if m.ScrollY != d.Hunks[0].StartRow {
		t.Fatalf("ScrollY = %d, want %d (first hunk start row)", m.ScrollY, d.Hunks[0].StartRow)
	}
	if m.ScrollX != 0 {
		t.Fatalf("ScrollX = %d, want 0", m.ScrollX)
	}
}

func TestOpenFileWithNoHunksScrollsToZero(t *testing.T) {
	d := computeDiff(t, "a\nb\n", "a\nb\n")
	m := New()
	m.OpenFile(d, &highlight.Cache{}, textbuf.FromBytes([]byte("a\nb\n")), textbuf.FromBytes([]byte("a\nb\n")), false)
	if m.ScrollY != 0 {
		t.Fatalf("ScrollY = %d, want 0", m.ScrollY)
	}
}

func TestOpenFileHunkStartingAtRowZeroIsNotSkipped(t *testing.T) {
	old := "a\nb\nc\n"
	new := "X\nb\nc\n"
	d := computeDiff(t, old, new)
	if d.Hunks[0].StartRow != 0 {
		t.Fatalf("test setup: expected hunk starting at row 0, got %d", d.Hunks[0].StartRow)
	}

	m := New()
	m.OpenFile(d, &highlight.Cache{}, textbuf.FromBytes([]byte(old)), textbuf.FromBytes([]byte(new)), false)
	if m.ScrollY != 0 {
		t.Fatalf("ScrollY = %d, want 0 (first hunk starts at row 0)", m.ScrollY)
	}
}

func TestToggleViewModeRoundTripsScrollPosition(t *testing.T) {
	old := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\nk\nl\nm\nn\no\np\n"
	new := "a\nb\nc\nX\ne\nf\ng\nh\ni\nj\nk\nl\nm\nY\no\np\n"
	d := computeDiff(t, old, new)

	m := New()
	m.OpenFile(d, &highlight.Cache{}, textbuf.FromBytes([]byte(old)), textbuf.FromBytes([]byte(new)), false)

	m.JumpNextHunk()
	startFull := m.ScrollY

	m.ToggleViewMode()
	if m.ViewMode() != ViewHunksOnly {
		t.Fatalf("expected HunksOnly mode after toggle")
	}

	m.ToggleViewMode()
	if m.ViewMode() != ViewFull {
		t.Fatalf("expected Full mode after second toggle")
	}
	if m.ScrollY != startFull {
		t.Fatalf("ScrollY after round trip = %d, want %d", m.ScrollY, startFull)
	}
}

func TestJumpNextPrevHunk(t *testing.T) {
	old := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n15\n16\n17\n18\n19\n20\n"
	new := "1\n2\n3\n4\n5\nX\n7\n8\n9\n10\n11\n12\n13\n14\n15\n16\n17\n18\nY\n20\n"
	d := computeDiff(t, old, new)
	if len(d.Hunks) < 2 {
		t.Fatalf("expected at least two hunks, got %d", len(d.Hunks))
	}

	m := New()
	m.OpenFile(d, &highlight.Cache{}, textbuf.FromBytes([]byte(old)), textbuf.FromBytes([]byte(new)), false)

	firstHunkStart := m.ScrollY
	m.JumpNextHunk()
	if m.ScrollY == firstHunkStart {
		t.Fatalf("expected ScrollY to advance to the next hunk")
	}
	second := m.ScrollY

	m.JumpPrevHunk()
	if m.ScrollY != firstHunkStart {
		t.Fatalf("JumpPrevHunk did not return to first hunk: got %d, want %d", m.ScrollY, firstHunkStart)
	}
	_ = second
}

func TestTogglePaneAndDirtyFlag(t *testing.T) {
	m := New()
	if m.ConsumeDirty() {
		t.Fatalf("fresh model should not be dirty")
	}

	m.TogglePane(PaneNew)
	if m.Focus() != PaneNew {
		t.Fatalf("Focus() = %v, want PaneNew", m.Focus())
	}
	if !m.ConsumeDirty() {
		t.Fatalf("expected dirty after TogglePane")
	}
	if m.ConsumeDirty() {
		t.Fatalf("ConsumeDirty should clear the flag")
	}
}

func TestOpenFileBinaryLeavesNoDiffOrHunks(t *testing.T) {
	m := New()
	old := textbuf.FromBytes([]byte("a\x00b"))
	new := textbuf.FromBytes([]byte("a\x00c"))
	m.OpenFile(nil, nil, old, new, true)

	if !m.IsBinary() {
		t.Fatalf("expected IsBinary() = true")
	}
	if m.ScrollY != 0 || m.ScrollX != 0 {
		t.Fatalf("expected scroll reset to zero for binary file, got (%d,%d)", m.ScrollY, m.ScrollX)
	}
	if m.CurrentHunkIndex() != -1 {
		t.Fatalf("expected CurrentHunkIndex() = -1 with no hunks")
	}
	m.JumpNextHunk() // must not panic with a nil diff
	m.JumpPrevHunk()
}

func TestScrollClampsAtZero(t *testing.T) {
	d := computeDiff(t, "a\nb\n", "a\nb\n")
	m := New()
	m.OpenFile(d, &highlight.Cache{}, textbuf.FromBytes([]byte("a\nb\n")), textbuf.FromBytes([]byte("a\nb\n")), false)

	m.Scroll(-100, -100)
	if m.ScrollY != 0 || m.ScrollX != 0 {
		t.Fatalf("expected scroll clamped at zero, got (%d,%d)", m.ScrollY, m.ScrollX)
	}
}
