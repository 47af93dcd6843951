// Package highlight builds per-file syntax highlight spans and enclosing
// scope ranges, once per file load, cached for the lifetime of the current
// selection.
package highlight

import (
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/quickdiff/quickdiff/internal/textbuf"
)

// Span is one highlighted byte range within a single line.
type Span struct {
	Line      int
	ByteStart int
	ByteEnd   int
	Style     StyleID
}

// ScopeRange is an enclosing construct (function/class/impl/module) used for
// sticky-header rendering.
type ScopeRange struct {
	StartLine  int
	EndLine    int
	HeaderText string
}

// FileHighlight holds the spans and scopes for one buffer.
type FileHighlight struct {
	SpansByLine map[int][]Span
	Scopes      []ScopeRange
}

// Cache holds the highlight data for both sides of the currently open file.
type Cache struct {
	Old *FileHighlight
	New *FileHighlight
}

// budget bounds how much work Build will do before degrading to empty
// spans, per spec's "implementation-defined size or time budget" clause.
const (
	maxLinesForHighlight = 20000
	maxBuildDuration      = 150 * time.Millisecond
)

// Build computes highlight spans and scope ranges for both buffers of a
// file, inferring the language from path's extension.
func Build(path string, old, new *textbuf.Buffer) *Cache {
	lexer := lexerFor(path)
	return &Cache{
		Old: buildOne(lexer, old),
		New: buildOne(lexer, new),
	}
}

func lexerFor(path string) chroma.Lexer {
	if l := lexers.Match(path); l != nil {
		return chroma.Coalesce(l)
	}
	return lexers.Fallback
}

func buildOne(lexer chroma.Lexer, buf *textbuf.Buffer) *FileHighlight {
	fh := &FileHighlight{SpansByLine: make(map[int][]Span)}
	if buf == nil || buf.IsBinary() || buf.LineCount() == 0 || buf.LineCount() > maxLinesForHighlight {
		return fh
	}

	start := time.Now()
	text := string(buf.Bytes())
	iter, err := lexer.Tokenise(nil, text)
	if err != nil {
		return fh
	}

	line, col := 0, 0
	for token := iter(); token != chroma.EOFType.Token(); token = iter() {
		if time.Since(start) > maxBuildDuration {
			return &FileHighlight{SpansByLine: make(map[int][]Span)}
		}
		line, col = emitTokenSpans(fh, buf, line, col, token)
	}

	fh.Scopes = detectScopes(buf)
	return fh
}

// emitTokenSpans splits a (possibly multi-line) token's value across lines
// and appends a clamped, non-empty Span per line it touches. Returns the
// (line, column) position following the token.
func emitTokenSpans(fh *FileHighlight, buf *textbuf.Buffer, line, col int, token chroma.Token) (int, int) {
	style := styleFromTokenType(token.Type)
	parts := strings.Split(token.Value, "\n")
	for i, part := range parts {
		if part != "" {
			lineLen := lineByteLen(buf, line)
			start := clamp(col, 0, lineLen)
			end := clamp(col+len(part), 0, lineLen)
			if start < end {
				fh.SpansByLine[line] = append(fh.SpansByLine[line], Span{
					Line: line, ByteStart: start, ByteEnd: end, Style: style,
				})
			}
		}
		if i < len(parts)-1 {
			line++
			col = 0
		} else {
			col += len(part)
		}
	}
	return line, col
}

func lineByteLen(buf *textbuf.Buffer, line int) int {
	b, ok := buf.Line(line)
	if !ok {
		return 0
	}
	return len(b)
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
