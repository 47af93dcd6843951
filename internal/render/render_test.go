package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/highlight"
	"github.com/quickdiff/quickdiff/internal/textbuf"
)

func plainStyles() Styles {
	var s Styles
	for i := range s.Syntax {
		s.Syntax[i] = lipgloss.NewStyle()
	}
	s.Gutter = lipgloss.NewStyle()
	s.DiffDelete = lipgloss.NewStyle()
	s.DiffInsert = lipgloss.NewStyle()
	s.DiffDimDel = lipgloss.NewStyle()
	s.DiffDimIns = lipgloss.NewStyle()
	s.InlineDel = lipgloss.NewStyle()
	s.InlineIns = lipgloss.NewStyle()
	s.ScopeHeader = lipgloss.NewStyle()
	return s
}

func TestSanitizeControlCharsReplacesWithReplacementChar(t *testing.T) {
	in := "abc\x00\x1b[31mdef\x7f"
	got := sanitizeControlChars(in)
	if strings.ContainsAny(got, "\x00\x1b\x7f") {
		t.Fatalf("control chars survived sanitization: %q", got)
	}
	if !strings.Contains(got, "�") {
		t.Fatalf("expected replacement character in output: %q", got)
	}
}

func TestSanitizeControlCharsPreservesTabs(t *testing.T) {
	in := "a\tb"
	got := sanitizeControlChars(in)
	if got != in {
		t.Fatalf("sanitizeControlChars altered a tab: got %q, want %q", got, in)
	}
}

func TestExpandTabsAlignsToEightColumnStops(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"\t", "        "},
		{"a\t", "a       "},
		{"ab\t", "ab      "},
		{"abcdefgh\t", "abcdefgh        "},
	}
	for _, c := range cases {
		if got := expandTabs(c.in); got != c.want {
			t.Errorf("expandTabs(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruncateColsNeverSplitsMultiByteRune(t *testing.T) {
	s := "日本語abc"
	got := truncateCols(s, 4)
	if len([]rune(got)) != 4 {
		t.Fatalf("truncateCols returned %d runes, want 4: %q", len([]rune(got)), got)
	}
}

func TestTransformLineOffsetsMapsAcrossTabExpansion(t *testing.T) {
	raw := "\tfoo"
	text, offsetMap := transformLineOffsets(raw)
	if text != "        foo" {
		t.Fatalf("transformLineOffsets text = %q, want %q", text, "        foo")
	}
	// "foo" starts at raw offset 1, which must map past the 8 expanded
	// spaces the leading tab produced.
	if got := remapOffset(offsetMap, 1); got != 8 {
		t.Fatalf("remapOffset(1) = %d, want 8", got)
	}
	if got := remapOffset(offsetMap, len(raw)); got != len(text) {
		t.Fatalf("remapOffset(end) = %d, want %d", got, len(text))
	}
}

func TestRenderRowAlignsHighlightSpansPastLeadingTab(t *testing.T) {
	e := diffcore.New()
	old := textbuf.FromBytes([]byte("\tfoo\n"))
	new := textbuf.FromBytes([]byte("\tfoo\n"))
	diff := e.Compute(old, new, 3)
	proj := diffcore.NewFullProjection(len(diff.Rows))

	r := New(plainStyles())
	r.styles.Syntax[1] = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	fh := &highlight.FileHighlight{SpansByLine: map[int][]highlight.Span{
		// "foo" begins at raw byte offset 1, right after the tab.
		0: {{Line: 0, ByteStart: 1, ByteEnd: 4, Style: 1}},
	}}

	frame := Frame{
		Side:       diffcore.SideOld,
		Diff:       diff,
		Projection: proj,
		Highlight:  fh,
		Buffer:     old,
		Height:     1,
		Width:      40,
	}

	lines := r.RenderPane(frame)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "foo") {
		t.Fatalf("expected rendered row to contain the expanded line text, got %q", lines[0])
	}

	text, offsetMap := transformLineOffsets("\tfoo")
	sp := remapSpans(fh.SpansByLine[0], offsetMap)[0]
	if got := text[sp.ByteStart:sp.ByteEnd]; got != "foo" {
		t.Fatalf("remapped span covers %q, want %q", got, "foo")
	}
}

func TestRenderPaneProducesExactlyHeightLines(t *testing.T) {
	e := diffcore.New()
	old := textbuf.FromBytes([]byte("a\nb\nc\nd\ne\n"))
	new := textbuf.FromBytes([]byte("a\nX\nc\nd\ne\n"))
	diff := e.Compute(old, new, 3)
	proj := diffcore.NewFullProjection(len(diff.Rows))

	r := New(plainStyles())
	frame := Frame{
		Side:       diffcore.SideOld,
		Diff:       diff,
		Projection: proj,
		Highlight:  &highlight.FileHighlight{SpansByLine: map[int][]highlight.Span{}},
		Buffer:     old,
		ScrollY:    0,
		ScrollX:    0,
		Height:     5,
		Width:      40,
	}

	lines := r.RenderPane(frame)
	if len(lines) != 5 {
		t.Fatalf("RenderPane returned %d lines, want 5", len(lines))
	}
}

func TestRenderPaneDoesNotPanicPastEndOfFile(t *testing.T) {
	e := diffcore.New()
	old := textbuf.FromBytes([]byte("a\nb\n"))
	new := textbuf.FromBytes([]byte("a\nb\n"))
	diff := e.Compute(old, new, 3)
	proj := diffcore.NewFullProjection(len(diff.Rows))

	r := New(plainStyles())
	frame := Frame{
		Side:       diffcore.SideOld,
		Diff:       diff,
		Projection: proj,
		Highlight:  &highlight.FileHighlight{SpansByLine: map[int][]highlight.Span{}},
		Buffer:     old,
		ScrollY:    0,
		Height:     10, // taller than the file
		Width:      20,
	}

	lines := r.RenderPane(frame)
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines even past EOF, got %d", len(lines))
	}
}

func TestStickyHeaderForReturnsEmptyWhenNoEnclosingScope(t *testing.T) {
	fh := &highlight.FileHighlight{Scopes: nil}
	if got := stickyHeaderFor(fh, 5); got != "" {
		t.Fatalf("expected empty header, got %q", got)
	}
}

func TestStickyHeaderForOnlyWhenStartIsAboveViewport(t *testing.T) {
	fh := &highlight.FileHighlight{Scopes: []highlight.ScopeRange{
		{StartLine: 2, EndLine: 10, HeaderText: "func main() {"},
	}}
	if got := stickyHeaderFor(fh, 5); got != "func main() {" {
		t.Fatalf("expected sticky header when scope starts above viewport, got %q", got)
	}
	if got := stickyHeaderFor(fh, 2); got != "" {
		t.Fatalf("expected no sticky header when scope start equals the current row, got %q", got)
	}
}
