// Package patch parses a unified-diff stream (stdin or a PR patch) into
// per-file metadata and reconstructs synthetic old/new buffers from the
// hunks, so the core's DiffEngine can recompute a DiffResult over content
// it never fetched from a blob source.
package patch

import (
	"fmt"
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"

	"github.com/quickdiff/quickdiff/internal/source"
)

// File is one parsed file entry from a unified-diff stream.
type File struct {
	Path      string
	OldPath   string
	Kind      source.Kind
	Additions int
	Deletions int
	OldText   string
	NewText   string
}

// Parse splits raw into per-file entries, reconstructing each file's old
// and new text by concatenating the context and changed lines of its hunks
// in order. It does not require the pre-image to exist on disk. The line
// numbers in the hunk headers are not used: lines between hunks are absent
// from the reconstructed text, so its line positions follow the hunk
// bodies, not the original file.
func Parse(raw []byte) ([]File, error) {
	fileDiffs, err := sgdiff.ParseMultiFileDiff(raw)
	if err != nil {
		return nil, fmt.Errorf("patch: parse unified diff: %w", err)
	}

	files := make([]File, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		files = append(files, fileFromDiff(fd))
	}
	return files, nil
}

func fileFromDiff(fd *sgdiff.FileDiff) File {
	f := File{
		Path:    trimDiffPrefix(fd.NewName),
		OldPath: trimDiffPrefix(fd.OrigName),
		Kind:    kindFromNames(fd),
	}
	if f.Kind == source.Renamed && f.OldPath == f.Path {
		f.OldPath = ""
	}

	var oldLines, newLines []string
	for _, h := range fd.Hunks {
		ol, nl, adds, dels := replayHunk(h)
		oldLines = append(oldLines, ol...)
		newLines = append(newLines, nl...)
		f.Additions += adds
		f.Deletions += dels
	}
	f.OldText = strings.Join(oldLines, "\n")
	f.NewText = strings.Join(newLines, "\n")
	if len(oldLines) > 0 {
		f.OldText += "\n"
	}
	if len(newLines) > 0 {
		f.NewText += "\n"
	}
	return f
}

// replayHunk walks one hunk's body, emitting the old-side and new-side
// line sequences it implies.
func replayHunk(h *sgdiff.Hunk) (oldLines, newLines []string, additions, deletions int) {
	for _, raw := range splitHunkBody(h.Body) {
		if raw == "" {
			continue
		}
		switch raw[0] {
		case ' ':
			oldLines = append(oldLines, raw[1:])
			newLines = append(newLines, raw[1:])
		case '-':
			oldLines = append(oldLines, raw[1:])
			deletions++
		case '+':
			newLines = append(newLines, raw[1:])
			additions++
		case '\\':
			// "\ No newline at end of file" marker; not a content line.
		}
	}
	return oldLines, newLines, additions, deletions
}

func splitHunkBody(body []byte) []string {
	text := string(body)
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func kindFromNames(fd *sgdiff.FileDiff) source.Kind {
	old := trimDiffPrefix(fd.OrigName)
	new := trimDiffPrefix(fd.NewName)
	switch {
	case old == "/dev/null":
		return source.Added
	case new == "/dev/null":
		return source.Deleted
	case old != new:
		return source.Renamed
	default:
		return source.Modified
	}
}

func trimDiffPrefix(name string) string {
	for _, prefix := range []string{"a/", "b/"} {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}
