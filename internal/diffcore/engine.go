package diffcore

import (
	"strings"

	dmp "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/quickdiff/quickdiff/internal/textbuf"
)

// DefaultContext is the number of unchanged lines shown around each hunk
// when the caller does not specify one.
const DefaultContext = 3

// Engine computes diffs between text buffers. It wraps a single
// diffmatchpatch instance so cleanup settings are shared across calls.
type Engine struct {
	dmp *dmp.DiffMatchPatch
}

// New returns an Engine ready for Compute calls.
func New() *Engine {
	return &Engine{dmp: dmp.New()}
}

// Compute performs a line-level diff between old and new and groups the
// resulting rows into context-padded hunks. Callers must check
// old.IsBinary()/new.IsBinary() first — Compute does not re-check and will
// happily diff binary content as if it were text.
func (e *Engine) Compute(old, new *textbuf.Buffer, context int) *Result {
	if context < 0 {
		context = DefaultContext
	}

	oldLines := old.Lines()
	newLines := new.Lines()

	rows, inline := e.diffLines(oldLines, newLines)
	hunks := buildHunks(rows, context)

	return &Result{Rows: rows, Hunks: hunks, InlineSpans: inline}
}

// change is an intermediate line-level edit before delete/insert runs are
// paired into RenderRows.
type change struct {
	kind    ChangeKind // Equal, Delete, or Insert only
	oldLine int        // -1 if not applicable
	newLine int        // -1 if not applicable
}

func (e *Engine) diffLines(oldLines, newLines []string) ([]RenderRow, map[int][]InlineSpan) {
	text1 := joinWithTrailingNewline(oldLines)
	text2 := joinWithTrailingNewline(newLines)

	chars1, chars2, lineArray := e.dmp.DiffLinesToChars(text1, text2)
	diffs := e.dmp.DiffMain(chars1, chars2, false)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	changes := make([]change, 0, len(oldLines)+len(newLines))
	oldIdx, newIdx := 0, 0
	for _, d := range diffs {
		lines := splitDiffLines(d.Text)
		switch d.Type {
		case dmp.DiffEqual:
			for range lines {
				changes = append(changes, change{kind: Equal, oldLine: oldIdx, newLine: newIdx})
				oldIdx++
				newIdx++
			}
		case dmp.DiffDelete:
			for range lines {
				changes = append(changes, change{kind: Delete, oldLine: oldIdx, newLine: -1})
				oldIdx++
			}
		case dmp.DiffInsert:
			for range lines {
				changes = append(changes, change{kind: Insert, oldLine: -1, newLine: newIdx})
				newIdx++
			}
		}
	}

	rows := pairChanges(changes)
	inline := e.computeInlineSpans(rows, oldLines, newLines)
	return rows, inline
}

// pairChanges merges every contiguous run of deletes and inserts into
// Replace rows by positional pairing, matching spec §4.2: delete-then-insert
// pairs become one Replace row; leftovers stay Delete or Insert rows.
func pairChanges(changes []change) []RenderRow {
	rows := make([]RenderRow, 0, len(changes))
	i := 0
	for i < len(changes) {
		c := changes[i]
		if c.kind == Equal {
			rows = append(rows, RenderRow{Kind: Equal, OldLine: c.oldLine, NewLine: c.newLine})
			i++
			continue
		}

		var dels, inserts []change
		for i < len(changes) && changes[i].kind != Equal {
			if changes[i].kind == Delete {
				dels = append(dels, changes[i])
			} else {
				inserts = append(inserts, changes[i])
			}
			i++
		}

		n := len(dels)
		if len(inserts) > n {
			n = len(inserts)
		}
		for j := 0; j < n; j++ {
			row := RenderRow{OldLine: -1, NewLine: -1}
			hasDel := j < len(dels)
			hasIns := j < len(inserts)
			if hasDel {
				row.OldLine = dels[j].oldLine
			}
			if hasIns {
				row.NewLine = inserts[j].newLine
			}
			switch {
			case hasDel && hasIns:
				row.Kind = Replace
			case hasDel:
				row.Kind = Delete
			default:
				row.Kind = Insert
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// buildHunks groups change rows together with `context` equal rows on each
// side, merging adjacent blocks when fewer than 2*context equal rows
// separate them.
func buildHunks(rows []RenderRow, context int) []Hunk {
	if len(rows) == 0 {
		return nil
	}

	var hunks []Hunk
	inHunk := false
	hunkStart := 0
	lastChange := 0

	for i, row := range rows {
		isChange := row.Kind != Equal
		if isChange {
			if !inHunk {
				hunkStart = i - context
				if hunkStart < 0 {
					hunkStart = 0
				}
				inHunk = true
			}
			lastChange = i
		} else if inHunk {
			gap := i - lastChange
			if gap >= context*2 {
				end := lastChange + context + 1
				if end > len(rows) {
					end = len(rows)
				}
				hunks = append(hunks, makeHunk(rows, hunkStart, end))
				inHunk = false
			}
		}
	}

	if inHunk {
		end := lastChange + context + 1
		if end > len(rows) {
			end = len(rows)
		}
		hunks = append(hunks, makeHunk(rows, hunkStart, end))
	}

	return hunks
}

func makeHunk(rows []RenderRow, start, end int) Hunk {
	oldMin, oldMax, newMin, newMax := -1, -1, -1, -1
	for _, r := range rows[start:end] {
		if r.Kind == Equal {
			continue
		}
		if r.OldLine >= 0 {
			if oldMin == -1 || r.OldLine < oldMin {
				oldMin = r.OldLine
			}
			if r.OldLine > oldMax {
				oldMax = r.OldLine
			}
		}
		if r.NewLine >= 0 {
			if newMin == -1 || r.NewLine < newMin {
				newMin = r.NewLine
			}
			if r.NewLine > newMax {
				newMax = r.NewLine
			}
		}
	}
	if oldMin == -1 {
		oldMin = 0
	}
	if newMin == -1 {
		newMin = 0
	}
	return Hunk{
		StartRow: start,
		RowCount: end - start,
		OldRange: LineRange{Start: oldMin, Count: oldMax - oldMin + 1},
		NewRange: LineRange{Start: newMin, Count: newMax - newMin + 1},
	}
}

func joinWithTrailingNewline(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// splitDiffLines splits a DiffCharsToLines-recovered text blob back into its
// constituent lines, dropping the trailing empty element produced by the
// final "\n".
func splitDiffLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
