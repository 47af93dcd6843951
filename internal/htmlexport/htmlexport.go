// Package htmlexport renders a best-effort static HTML snapshot of a diff
// view: two <pre> panes with inline CSS classes derived from the active
// syntax palette. It is explicitly out of scope for the core, so it stays
// deliberately small and reuses the Renderer's row-composition logic only
// at the level of "which style applies to which byte", not its ANSI output.
package htmlexport

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/highlight"
	"github.com/quickdiff/quickdiff/internal/textbuf"
)

// Palette maps each closed StyleID to a CSS color, mirroring the terminal
// Styles struct's role for internal/render.
type Palette [highlight.StyleAttribute + 1]string

// DefaultPalette gives every StyleID a distinguishable color so an export
// is legible even without a configured theme.
func DefaultPalette() Palette {
	var p Palette
	p[highlight.StyleDefault] = "#d4d4d4"
	p[highlight.StyleKeyword] = "#569cd6"
	p[highlight.StyleType] = "#4ec9b0"
	p[highlight.StyleFunction] = "#dcdcaa"
	p[highlight.StyleString] = "#ce9178"
	p[highlight.StyleNumber] = "#b5cea8"
	p[highlight.StyleComment] = "#6a9955"
	p[highlight.StyleOperator] = "#d4d4d4"
	p[highlight.StylePunctuation] = "#d4d4d4"
	p[highlight.StyleVariable] = "#9cdcfe"
	p[highlight.StyleConstant] = "#4fc1ff"
	p[highlight.StyleProperty] = "#9cdcfe"
	p[highlight.StyleAttribute] = "#9cdcfe"
	return p
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { background: #1e1e1e; color: #d4d4d4; font-family: monospace; }
.quickdiff-panes { display: flex; gap: 1rem; }
.quickdiff-pane { flex: 1; overflow-x: auto; white-space: pre; }
.qd-del { background: #4b1818; }
.qd-ins { background: #123a1c; }
{{range $id, $color := .StyleColors}}.qd-s{{$id}} { color: {{$color}}; }
{{end}}
</style>
</head>
<body>
<div class="quickdiff-panes">
<pre class="quickdiff-pane">{{.OldHTML}}</pre>
<pre class="quickdiff-pane">{{.NewHTML}}</pre>
</div>
</body>
</html>
`

var tmpl = template.Must(template.New("quickdiff-export").Parse(documentTemplate))

type documentData struct {
	Title       string
	StyleColors map[int]string
	OldHTML     template.HTML
	NewHTML     template.HTML
}

// Render produces a standalone HTML document for the given diff result,
// its buffers, and highlight spans (either may be nil, treated as empty).
func Render(title string, diff *diffcore.Result, oldBuf, newBuf *textbuf.Buffer, hl *highlight.Cache, palette Palette) (string, error) {
	var oldHL, newHL *highlight.FileHighlight
	if hl != nil {
		oldHL, newHL = hl.Old, hl.New
	}

	data := documentData{
		Title:       title,
		StyleColors: paletteToMap(palette),
		OldHTML:     template.HTML(renderPane(diff, oldBuf, oldHL, diffcore.SideOld)),
		NewHTML:     template.HTML(renderPane(diff, newBuf, newHL, diffcore.SideNew)),
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("htmlexport: execute template: %w", err)
	}
	return b.String(), nil
}

func paletteToMap(p Palette) map[int]string {
	m := make(map[int]string, len(p))
	for id, color := range p {
		m[id] = color
	}
	return m
}

func renderPane(diff *diffcore.Result, buf *textbuf.Buffer, fh *highlight.FileHighlight, side diffcore.Side) string {
	if diff == nil || buf == nil {
		return ""
	}

	var b strings.Builder
	for _, row := range diff.Rows {
		lineIdx, present := sideLine(row, side)
		if !present {
			b.WriteString("\n")
			continue
		}
		text, _ := buf.LineString(lineIdx)
		rowClass := rowClass(row.Kind, side)

		var spans []highlight.Span
		if fh != nil {
			spans = fh.SpansByLine[lineIdx]
		}

		if rowClass != "" {
			fmt.Fprintf(&b, `<span class="%s">`, rowClass)
		}
		writeHighlighted(&b, text, spans)
		if rowClass != "" {
			b.WriteString("</span>")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sideLine(row diffcore.RenderRow, side diffcore.Side) (int, bool) {
	if side == diffcore.SideOld {
		return row.OldLine, row.HasOld()
	}
	return row.NewLine, row.HasNew()
}

func rowClass(kind diffcore.ChangeKind, side diffcore.Side) string {
	switch {
	case kind == diffcore.Delete && side == diffcore.SideOld:
		return "qd-del"
	case kind == diffcore.Insert && side == diffcore.SideNew:
		return "qd-ins"
	case kind == diffcore.Replace && side == diffcore.SideOld:
		return "qd-del"
	case kind == diffcore.Replace && side == diffcore.SideNew:
		return "qd-ins"
	default:
		return ""
	}
}

func writeHighlighted(b *strings.Builder, text string, spans []highlight.Span) {
	if len(spans) == 0 {
		template.HTMLEscape(b, []byte(text))
		return
	}
	for _, sp := range spans {
		start, end := clampSpan(sp, len(text))
		if start >= end {
			continue
		}
		fmt.Fprintf(b, `<span class="qd-s%d">`, sp.Style)
		template.HTMLEscape(b, []byte(text[start:end]))
		b.WriteString("</span>")
	}
}

func clampSpan(sp highlight.Span, lineLen int) (int, int) {
	start, end := sp.ByteStart, sp.ByteEnd
	if start < 0 {
		start = 0
	}
	if end > lineLen {
		end = lineLen
	}
	return start, end
}
