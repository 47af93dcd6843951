// Package textbuf implements the immutable, shared-content text buffer that
// every diff and highlight computation reads lines from.
package textbuf

import "unicode/utf8"

// binaryScanBytes caps how much of the input we scan for a NUL byte when
// deciding whether a file is binary, matching git's own heuristic.
const binaryScanBytes = 8 * 1024

// Buffer is immutable byte storage with precomputed line-start offsets. It is
// cheap to clone since the underlying bytes are shared.
type Buffer struct {
	content    []byte
	lineStarts []int
	binary     bool
}

// FromBytes builds a Buffer from raw bytes. CRLF sequences are normalized to
// LF before line starts are computed, so two files differing only in line
// ending diff as equal. Construction never fails.
func FromBytes(raw []byte) *Buffer {
	binary := detectBinary(raw)
	content := normalizeCRLF(raw)
	return &Buffer{
		content:    content,
		lineStarts: computeLineStarts(content),
		binary:     binary,
	}
}

// Empty returns a zero-length buffer with no lines, matching the behavior
// of FromBytes(nil).
func Empty() *Buffer {
	return FromBytes(nil)
}

// IsBinary reports whether the buffer was flagged binary at construction.
func (b *Buffer) IsBinary() bool { return b.binary }

// LineCount returns the number of logical lines. An empty buffer has zero
// lines; any non-empty buffer has at least one, even without a trailing
// newline.
func (b *Buffer) LineCount() int {
	if len(b.content) == 0 {
		return 0
	}
	return len(b.lineStarts) - 1
}

// Line returns the bytes of the i'th line (0-indexed), excluding any
// trailing newline. Returns nil, false if i is out of range.
func (b *Buffer) Line(i int) ([]byte, bool) {
	if i < 0 || i >= b.LineCount() {
		return nil, false
	}
	start := b.lineStarts[i]
	end := b.lineStarts[i+1]
	if end > start && b.content[end-1] == '\n' {
		end--
	}
	return b.content[start:end], true
}

// LineString returns the i'th line lossily decoded as UTF-8, replacing
// invalid sequences with U+FFFD. Used at render time; raw bytes stay intact
// in storage.
func (b *Buffer) LineString(i int) (string, bool) {
	line, ok := b.Line(i)
	if !ok {
		return "", false
	}
	if utf8.Valid(line) {
		return string(line), true
	}
	return toValidUTF8(line), true
}

// Lines returns every line lossily decoded, in order. Used to feed the
// line-level diff algorithm.
func (b *Buffer) Lines() []string {
	out := make([]string, b.LineCount())
	for i := range out {
		s, _ := b.LineString(i)
		out[i] = s
	}
	return out
}

// Bytes returns the normalized content. Callers must not mutate it.
func (b *Buffer) Bytes() []byte { return b.content }

// Len returns the byte length of the normalized content.
func (b *Buffer) Len() int { return len(b.content) }

func detectBinary(raw []byte) bool {
	n := len(raw)
	if n > binaryScanBytes {
		n = binaryScanBytes
	}
	for i := 0; i < n; i++ {
		if raw[i] == 0 {
			return true
		}
	}
	return false
}

func normalizeCRLF(raw []byte) []byte {
	hasCRLF := false
	for i := 0; i+1 < len(raw); i++ {
		if raw[i] == '\r' && raw[i+1] == '\n' {
			hasCRLF = true
			break
		}
	}
	if !hasCRLF {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out
	}

	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' && i+1 < len(raw) && raw[i+1] == '\n' {
			continue
		}
		out = append(out, raw[i])
	}
	return out
}

// computeLineStarts returns line-start offsets with a trailing sentinel
// equal to len(content), so Line(i) can always read [starts[i], starts[i+1]).
// starts[0] is always 0 and the slice is strictly ascending.
func computeLineStarts(content []byte) []int {
	starts := make([]int, 0, 16)
	starts = append(starts, 0)
	for i, c := range content {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	if len(content) == 0 {
		return append(starts, 0)
	}
	if content[len(content)-1] != '\n' {
		starts = append(starts, len(content))
	}
	return starts
}

func toValidUTF8(b []byte) string {
	out := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		out = append(out, r)
		b = b[size:]
	}
	return string(out)
}
