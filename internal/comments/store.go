package comments

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quickdiff/quickdiff/internal/diffcore"
)

const storeVersion = 1

// ErrUnsupportedVersion is returned when a comments file's version field is
// newer than this build understands. Load never silently overwrites an
// unrecognized file.
var ErrUnsupportedVersion = errors.New("comments: unsupported storage version")

// Store persists comments for one repository at
// <gitDir>/.quickdiff/comments.json.
type Store struct {
	path string
}

// NewStore returns a Store rooted at gitDir, the repository's absolute git
// directory.
func NewStore(gitDir string) Store {
	return Store{path: filepath.Join(gitDir, ".quickdiff", "comments.json")}
}

type selectorDoc struct {
	Kind      string `json:"kind"`
	OldRange  [2]int `json:"old_range"`
	NewRange  [2]int `json:"new_range"`
	DigestHex string `json:"digest_hex"`
}

type anchorDoc struct {
	Selectors []selectorDoc `json:"selectors"`
}

type commentDoc struct {
	ID           uint64    `json:"id"`
	Path         string    `json:"path"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	Anchor       anchorDoc `json:"anchor"`
	CreatedAtMS  int64     `json:"created_at_ms"`
	ResolvedAtMS int64     `json:"resolved_at_ms,omitempty"`
}

type storeDoc struct {
	Version  int          `json:"version"`
	NextID   uint64       `json:"next_id"`
	Comments []commentDoc `json:"comments"`
}

// Load reads the comment set, returning an empty, zero-valued set (next ID
// 1) if the file does not exist. Invalid JSON or an unsupported version
// fails the load rather than silently discarding the file's contents.
func (s Store) Load() ([]Comment, uint64, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 1, nil
		}
		return nil, 0, err
	}

	var doc storeDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, fmt.Errorf("comments: parse %s: %w", s.path, err)
	}
	if doc.Version != storeVersion {
		return nil, 0, fmt.Errorf("%w: got version %d, want %d", ErrUnsupportedVersion, doc.Version, storeVersion)
	}

	out := make([]Comment, 0, len(doc.Comments))
	for _, cd := range doc.Comments {
		out = append(out, fromDoc(cd))
	}
	nextID := doc.NextID
	if nextID == 0 {
		nextID = 1
	}
	return out, nextID, nil
}

// Save atomically persists comments and nextID: it serializes to a sibling
// temp file, fsyncs where available, then renames into place, so a crash
// mid-write leaves the previous file intact and readable.
func (s Store) Save(commentList []Comment, nextID uint64) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	doc := storeDoc{Version: storeVersion, NextID: nextID}
	for _, c := range commentList {
		doc.Comments = append(doc.Comments, toDoc(c))
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".comments-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

func toDoc(c Comment) commentDoc {
	cd := commentDoc{
		ID:           c.ID,
		Path:         c.Path,
		Message:      c.Message,
		Status:       c.Status.String(),
		CreatedAtMS:  c.CreatedAtMS,
		ResolvedAtMS: c.ResolvedAtMS,
	}
	for _, sel := range c.Anchor.Selectors {
		cd.Anchor.Selectors = append(cd.Anchor.Selectors, selectorDoc{
			Kind:      sel.Kind,
			OldRange:  [2]int{sel.OldRange.Start, sel.OldRange.Count},
			NewRange:  [2]int{sel.NewRange.Start, sel.NewRange.Count},
			DigestHex: sel.DigestHex,
		})
	}
	return cd
}

func fromDoc(cd commentDoc) Comment {
	c := Comment{
		ID:           cd.ID,
		Path:         cd.Path,
		Message:      cd.Message,
		Status:       statusFromString(cd.Status),
		CreatedAtMS:  cd.CreatedAtMS,
		ResolvedAtMS: cd.ResolvedAtMS,
	}
	for _, sd := range cd.Anchor.Selectors {
		c.Anchor.Selectors = append(c.Anchor.Selectors, Selector{
			Kind:      sd.Kind,
			OldRange:  diffcore.LineRange{Start: sd.OldRange[0], Count: sd.OldRange[1]},
			NewRange:  diffcore.LineRange{Start: sd.NewRange[0], Count: sd.NewRange[1]},
			DigestHex: sd.DigestHex,
		})
	}
	return c
}

func statusFromString(s string) Status {
	if s == "resolved" {
		return StatusResolved
	}
	return StatusOpen
}
