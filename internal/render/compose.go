package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/highlight"
)

// composeLine layers syntax spans and inline-change emphasis onto one
// line's text, applies horizontal scroll by Unicode scalar column (never
// splitting a multi-byte rune), and truncates to width.
func (r *Renderer) composeLine(text string, spans []highlight.Span, inline []diffcore.InlineSpan, side diffcore.Side, bg lipgloss.Style, scrollX, width int) string {
	if width <= 0 {
		return ""
	}
	styleOf := styleLookup(spans)

	r.scratch.Reset()
	col := 0
	for byteIdx, rn := range text {
		if col >= scrollX && col-scrollX < width {
			st := bg
			if s, ok := styleOf(byteIdx); ok {
				st = st.Foreground(r.styles.Syntax[s].GetForeground())
			}
			if isInlineByte(inline, side, byteIdx) {
				if side == diffcore.SideOld {
					st = r.styles.InlineDel
				} else {
					st = r.styles.InlineIns
				}
			}
			r.scratch.WriteString(st.Render(string(rn)))
		}
		col++
	}

	visible := max(0, col-scrollX)
	if visible < width {
		r.scratch.WriteString(bg.Render(strings.Repeat(" ", width-visible)))
	}
	return r.scratch.String()
}

// styleLookup returns a function mapping a byte offset to its syntax
// StyleID, preferring the most specific (last-matching) span.
func styleLookup(spans []highlight.Span) func(int) (highlight.StyleID, bool) {
	return func(byteOffset int) (highlight.StyleID, bool) {
		found := false
		var style highlight.StyleID
		for _, sp := range spans {
			if byteOffset >= sp.ByteStart && byteOffset < sp.ByteEnd {
				style = sp.Style
				found = true
			}
		}
		return style, found
	}
}

func isInlineByte(inline []diffcore.InlineSpan, side diffcore.Side, byteOffset int) bool {
	for _, sp := range inline {
		if sp.Side == side && byteOffset >= sp.ByteStart && byteOffset < sp.ByteEnd {
			return true
		}
	}
	return false
}

// truncateCols truncates s to at most width Unicode scalar columns,
// matching the teacher's rune-counted truncation but column-aware so it
// never splits a multi-byte character.
func truncateCols(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
