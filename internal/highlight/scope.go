package highlight

import (
	"strings"

	"github.com/quickdiff/quickdiff/internal/textbuf"
)

// scopeKeywords opens a new enclosing scope when a line, after trimming
// leading whitespace, starts with one of these tokens. Chroma has no AST, so
// sticky-header scope detection falls back to this keyword/indentation
// heuristic rather than a real parse.
var scopeKeywords = []string{
	"func ", "func(",
	"def ",
	"class ",
	"fn ", "fn(",
	"impl ", "impl<",
	"struct ",
	"interface ",
	"module ",
	"namespace ",
	"type ", // covers Go's "type X struct {" / "type X interface {"
}

// detectScopes walks buf's lines and derives enclosing ScopeRanges using
// indentation: a scope opens on a keyword line and closes just before the
// next non-blank line whose indentation is <= the opening line's, so a
// closing brace at the opener's indentation is not part of the range.
func detectScopes(buf *textbuf.Buffer) []ScopeRange {
	n := buf.LineCount()
	if n == 0 {
		return nil
	}

	type open struct {
		startLine int
		indent    int
		header    string
	}
	var stack []open
	var scopes []ScopeRange

	for i := 0; i < n; i++ {
		text, _ := buf.LineString(i)
		trimmed := strings.TrimLeft(text, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(text) - len(trimmed)

		for len(stack) > 0 && indent <= stack[len(stack)-1].indent {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			scopes = append(scopes, ScopeRange{
				StartLine:  top.startLine,
				EndLine:    i - 1,
				HeaderText: top.header,
			})
		}

		if kw := matchScopeKeyword(trimmed); kw != "" {
			stack = append(stack, open{
				startLine: i,
				indent:    indent,
				header:    strings.TrimRight(trimmed, " \t{:"),
			})
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		scopes = append(scopes, ScopeRange{
			StartLine:  top.startLine,
			EndLine:    n - 1,
			HeaderText: top.header,
		})
	}

	return scopes
}

func matchScopeKeyword(trimmed string) string {
	for _, kw := range scopeKeywords {
		if strings.HasPrefix(trimmed, kw) {
			return kw
		}
	}
	return ""
}
