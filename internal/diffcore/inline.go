package diffcore

import (
	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

// computeInlineSpans derives word/character-level change spans for every
// Replace row, diffing the two line contents directly. diffmatchpatch's
// DiffMain walks Go strings rune-by-rune internally, so spans never split a
// multi-byte character.
func (e *Engine) computeInlineSpans(rows []RenderRow, oldLines, newLines []string) map[int][]InlineSpan {
	out := make(map[int][]InlineSpan)
	for i, row := range rows {
		if row.Kind != Replace {
			continue
		}
		oldText := lineAt(oldLines, row.OldLine)
		newText := lineAt(newLines, row.NewLine)
		if oldText == newText {
			continue
		}

		diffs := e.dmp.DiffMain(oldText, newText, false)
		diffs = e.dmp.DiffCleanupSemantic(diffs)

		var spans []InlineSpan
		oldOff, newOff := 0, 0
		for _, d := range diffs {
			n := len(d.Text)
			switch d.Type {
			case dmp.DiffEqual:
				oldOff += n
				newOff += n
			case dmp.DiffDelete:
				spans = append(spans, InlineSpan{
					Row: i, Side: SideOld, ByteStart: oldOff, ByteEnd: oldOff + n, Kind: SpanDelete,
				})
				oldOff += n
			case dmp.DiffInsert:
				spans = append(spans, InlineSpan{
					Row: i, Side: SideNew, ByteStart: newOff, ByteEnd: newOff + n, Kind: SpanInsert,
				})
				newOff += n
			}
		}
		if len(spans) > 0 {
			out[i] = spans
		}
	}
	return out
}

func lineAt(lines []string, idx int) string {
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return lines[idx]
}
