package comments

import (
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/textbuf"
)

// SelectorKind names the anchor selector scheme. v1 is the only kind
// emitted today; the field exists so a future scheme can coexist in stored
// JSON without breaking old anchors.
const SelectorKindDiffHunkV1 = "DiffHunkV1"

// Selector locates a hunk within a diff by content digest, with line ranges
// kept as a fallback for when the digest no longer matches (drift from
// unrelated edits elsewhere in the file).
type Selector struct {
	Kind       string
	OldRange   diffcore.LineRange
	NewRange   diffcore.LineRange
	DigestHex  string
}

// Anchor is one or more Selectors locating a comment's hunk. v1 emits
// exactly one.
type Anchor struct {
	Selectors []Selector
}

// SelectorFromHunk builds a v1 selector for the hunk at hunkIdx in diff,
// digesting its changed rows against old and new's line content.
func SelectorFromHunk(diff *diffcore.Result, hunkIdx int, old, new *textbuf.Buffer) (Selector, bool) {
	if hunkIdx < 0 || hunkIdx >= len(diff.Hunks) {
		return Selector{}, false
	}
	h := diff.Hunks[hunkIdx]
	return Selector{
		Kind:      SelectorKindDiffHunkV1,
		OldRange:  h.OldRange,
		NewRange:  h.NewRange,
		DigestHex: digestHunk(diff, h, old, new),
	}, true
}

// digestHunk implements the stable FNV-1a 64-bit digest over a hunk's
// changed rows' content: Delete/Replace rows feed their old line's text,
// Insert/Replace rows feed their new line's text; Equal rows contribute
// nothing. Hashing content rather than line numbers is what lets the digest
// still match after unrelated edits elsewhere in the file shift every line
// number without touching the hunk itself.
func digestHunk(diff *diffcore.Result, h diffcore.Hunk, old, new *textbuf.Buffer) string {
	sum := fnv.New64a()
	for row := h.StartRow; row < h.EndRow(); row++ {
		r := diff.Rows[row]
		switch r.Kind {
		case diffcore.Delete:
			writeDigestLine(sum, old, r.OldLine, '-')
		case diffcore.Insert:
			writeDigestLine(sum, new, r.NewLine, '+')
		case diffcore.Replace:
			writeDigestLine(sum, old, r.OldLine, '-')
			writeDigestLine(sum, new, r.NewLine, '+')
		}
	}
	return fmt.Sprintf("%016x", sum.Sum64())
}

func writeDigestLine(sum hash.Hash64, buf *textbuf.Buffer, line int, prefix byte) {
	sum.Write([]byte{prefix})
	if content, ok := buf.Line(line); ok {
		sum.Write(content)
	}
	sum.Write([]byte{'\n'})
}

// Find locates the hunk in diff that anchor refers to. It first tries an
// exact digest match across all current hunks, then falls back to the hunk
// whose line ranges overlap the stored selector the most, accepting the
// fallback only if that overlap is at least 50% on both sides. It returns
// -1 if neither strategy finds a hunk (the comment renders "detached" but
// is never deleted).
func Find(diff *diffcore.Result, anchor Anchor, old, new *textbuf.Buffer) int {
	if len(anchor.Selectors) == 0 {
		return -1
	}
	sel := anchor.Selectors[0]

	for i, h := range diff.Hunks {
		if digestHunk(diff, h, old, new) == sel.DigestHex {
			return i
		}
	}

	best := -1
	bestOverlap := 0.0
	for i, h := range diff.Hunks {
		oldOverlap := rangeOverlapFraction(sel.OldRange, h.OldRange)
		newOverlap := rangeOverlapFraction(sel.NewRange, h.NewRange)
		if oldOverlap < 0.5 || newOverlap < 0.5 {
			continue
		}
		combined := oldOverlap + newOverlap
		if combined > bestOverlap {
			bestOverlap = combined
			best = i
		}
	}
	return best
}

// rangeOverlapFraction returns the overlap between a and b as a fraction of
// a's length, 0 when a is empty or the ranges don't intersect.
func rangeOverlapFraction(a, b diffcore.LineRange) float64 {
	if a.Count <= 0 {
		return 0
	}
	start := max(a.Start, b.Start)
	end := min(a.End(), b.End())
	if end <= start {
		return 0
	}
	return float64(end-start) / float64(a.Count)
}
