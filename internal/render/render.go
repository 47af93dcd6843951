// Package render composes the per-frame terminal output for one diff pane:
// gutter, diff background, syntax foreground, inline change emphasis, and
// sticky scope headers, bounded to O(viewport) allocation.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/highlight"
	"github.com/quickdiff/quickdiff/internal/textbuf"
)

const tabStop = 8

// Styles holds the lipgloss styles the renderer layers onto a line. All
// fields are required; Theme (internal/theme) is responsible for filling
// them from the active palette.
type Styles struct {
	Gutter      lipgloss.Style
	DiffDelete  lipgloss.Style
	DiffInsert  lipgloss.Style
	DiffDimDel  lipgloss.Style
	DiffDimIns  lipgloss.Style
	InlineDel   lipgloss.Style
	InlineIns   lipgloss.Style
	ScopeHeader lipgloss.Style
	Syntax      [highlight.StyleAttribute + 1]lipgloss.Style
}

// Renderer composes visible rows for one pane of the viewport. It keeps
// reusable scratch buffers across frames so per-frame allocation stays
// bounded by viewport size rather than file length.
type Renderer struct {
	styles Styles
	scratch strings.Builder
}

// New returns a Renderer using styles for every layer it composes.
func New(styles Styles) *Renderer {
	return &Renderer{styles: styles}
}

// Frame is everything the Renderer needs to draw one pane for one tick.
type Frame struct {
	Side       diffcore.Side
	Diff       *diffcore.Result
	Projection *diffcore.Projection
	Highlight  *highlight.FileHighlight
	Buffer     *textbuf.Buffer
	ScrollY    int
	ScrollX    int
	Height     int
	Width      int
}

// RenderPane produces Height display lines for one pane, starting at
// ScrollY/ScrollX, including a pinned sticky scope header line when the
// enclosing scope's start is above the viewport.
func (r *Renderer) RenderPane(f Frame) []string {
	out := make([]string, 0, f.Height)

	topLine := -1
	if d := f.Projection.ViewRowToDiffRow(f.ScrollY); f.Diff != nil && d >= 0 && d < len(f.Diff.Rows) {
		if line, ok := sideLine(f.Diff.Rows[d], f.Side); ok {
			topLine = line
		}
	}
	sticky := stickyHeaderFor(f.Highlight, topLine)
	start := 0
	if sticky != "" {
		out = append(out, r.styles.ScopeHeader.Width(f.Width).Render(truncateCols(sticky, f.Width)))
		start = 1
	}

	for i := start; i < f.Height; i++ {
		viewRow := f.ScrollY + i - start
		out = append(out, r.renderRow(f, viewRow))
	}
	return out
}

// stickyHeaderFor finds the ScopeRange enclosing line (the pane's top
// visible buffer line) whose start is strictly above it, so the header is
// only pinned when it would otherwise have scrolled out of view.
func stickyHeaderFor(fh *highlight.FileHighlight, line int) string {
	if fh == nil || line < 0 {
		return ""
	}
	for _, sc := range fh.Scopes {
		if sc.StartLine < line && line <= sc.EndLine {
			return sc.HeaderText
		}
	}
	return ""
}

func (r *Renderer) renderRow(f Frame, viewRow int) string {
	if f.Projection.IsSeparator(viewRow) {
		return r.styles.Gutter.Width(f.Width).Render(strings.Repeat("─", f.Width))
	}

	diffRow := f.Projection.ViewRowToDiffRow(viewRow)
	if diffRow < 0 || diffRow >= len(f.Diff.Rows) {
		return strings.Repeat(" ", f.Width)
	}
	row := f.Diff.Rows[diffRow]

	lineIdx, present := sideLine(row, f.Side)
	if !present {
		return r.styles.Gutter.Width(f.Width).Render(strings.Repeat(" ", f.Width))
	}

	rawText, _ := f.Buffer.LineString(lineIdx)
	lineText, offsetMap := transformLineOffsets(rawText)

	gutter := gutterText(lineIdx, row.Kind, f.Side)
	bg := backgroundStyleFor(r.styles, row.Kind, f.Side)

	var spans []highlight.Span
	if f.Highlight != nil {
		spans = remapSpans(f.Highlight.SpansByLine[lineIdx], offsetMap)
	}

	var inline []diffcore.InlineSpan
	if row.Kind == diffcore.Replace {
		inline = remapInlineSpans(f.Diff.InlineSpans[diffRow], offsetMap)
	}

	body := r.composeLine(lineText, spans, inline, f.Side, bg, f.ScrollX, f.Width-len(gutter))
	return r.styles.Gutter.Render(gutter) + body
}

func sideLine(row diffcore.RenderRow, side diffcore.Side) (int, bool) {
	if side == diffcore.SideOld {
		return row.OldLine, row.HasOld()
	}
	return row.NewLine, row.HasNew()
}

func gutterText(lineIdx int, kind diffcore.ChangeKind, side diffcore.Side) string {
	marker := ' '
	switch {
	case kind == diffcore.Delete && side == diffcore.SideOld:
		marker = '-'
	case kind == diffcore.Insert && side == diffcore.SideNew:
		marker = '+'
	case kind == diffcore.Replace && side == diffcore.SideOld:
		marker = '-'
	case kind == diffcore.Replace && side == diffcore.SideNew:
		marker = '+'
	}
	return fmt.Sprintf("%6d %c ", lineIdx+1, marker)
}

func backgroundStyleFor(s Styles, kind diffcore.ChangeKind, side diffcore.Side) lipgloss.Style {
	switch {
	case kind == diffcore.Delete && side == diffcore.SideOld:
		return s.DiffDelete
	case kind == diffcore.Insert && side == diffcore.SideNew:
		return s.DiffInsert
	case kind == diffcore.Replace && side == diffcore.SideOld:
		return s.DiffDimDel
	case kind == diffcore.Replace && side == diffcore.SideNew:
		return s.DiffDimIns
	default:
		return lipgloss.NewStyle()
	}
}

// transformLineOffsets applies the same control-char sanitization and tab
// expansion as sanitizeControlChars/expandTabs in a single pass, additionally
// returning offsetMap so byte offsets computed against raw (untransformed)
// line bytes — highlight.Span and diffcore.InlineSpan both are — can be
// remapped onto the transformed text before composeLine consumes them.
// offsetMap[i] is the transformed byte offset corresponding to raw byte
// offset i, for every i that starts a rune and for i == len(raw); entries
// for the continuation bytes of a multi-byte rune stay 0.
func transformLineOffsets(raw string) (string, []int) {
	offsetMap := make([]int, len(raw)+1)
	var b strings.Builder
	b.Grow(len(raw))
	col := 0
	for i, r := range raw {
		offsetMap[i] = b.Len()
		switch {
		case r == '\t':
			n := tabStop - (col % tabStop)
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case r <= 0x1F || r == 0x7F:
			b.WriteRune('�')
			col++
		default:
			b.WriteRune(r)
			col++
		}
	}
	offsetMap[len(raw)] = b.Len()
	return b.String(), offsetMap
}

// remapOffset maps a raw byte offset through offsetMap, clamping to the
// mapped end-of-line offset for out-of-range input rather than panicking —
// span data can outlive the line it was computed against if a buffer
// reloads mid-flight.
func remapOffset(offsetMap []int, raw int) int {
	if raw < 0 {
		return 0
	}
	if raw >= len(offsetMap) {
		return offsetMap[len(offsetMap)-1]
	}
	return offsetMap[raw]
}

// remapSpans remaps a highlight line's syntax spans from raw byte offsets
// onto transformed-text byte offsets via offsetMap.
func remapSpans(spans []highlight.Span, offsetMap []int) []highlight.Span {
	if len(spans) == 0 {
		return spans
	}
	out := make([]highlight.Span, len(spans))
	for i, sp := range spans {
		out[i] = highlight.Span{
			Line:      sp.Line,
			ByteStart: remapOffset(offsetMap, sp.ByteStart),
			ByteEnd:   remapOffset(offsetMap, sp.ByteEnd),
			Style:     sp.Style,
		}
	}
	return out
}

// remapInlineSpans remaps a row's inline-change spans from raw byte offsets
// onto transformed-text byte offsets via offsetMap.
func remapInlineSpans(spans []diffcore.InlineSpan, offsetMap []int) []diffcore.InlineSpan {
	if len(spans) == 0 {
		return spans
	}
	out := make([]diffcore.InlineSpan, len(spans))
	for i, sp := range spans {
		out[i] = diffcore.InlineSpan{
			Row:       sp.Row,
			Side:      sp.Side,
			ByteStart: remapOffset(offsetMap, sp.ByteStart),
			ByteEnd:   remapOffset(offsetMap, sp.ByteEnd),
			Kind:      sp.Kind,
		}
	}
	return out
}

// sanitizeControlChars replaces bytes in [0x00,0x1F] union {0x7F}, except
// tab, with U+FFFD, preventing a file's raw bytes from injecting terminal control
// sequences into the rendered frame.
func sanitizeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' {
			b.WriteRune(r)
			continue
		}
		if r <= 0x1F || r == 0x7F {
			b.WriteRune('�')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// expandTabs rewrites tabs to spaces up to the next 8-column stop relative
// to the line's start, operating on Unicode scalar columns.
func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabStop - (col % tabStop)
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
