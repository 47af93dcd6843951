// Package review implements ReviewState: per-repo viewed-file tracking and
// last-selected-file bookmark, persisted atomically as versioned JSON.
package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const stateVersion = 1

// ErrUnsupportedVersion is returned when a review-state file's version is
// newer than this build understands.
var ErrUnsupportedVersion = errors.New("review: unsupported storage version")

// repoState holds one repo's viewed set and last-selected file. Viewed is
// kept as a map for O(1) lookups but marshals as the sorted `viewed: []`
// array the on-disk shape specifies.
type repoState struct {
	Viewed       map[string]bool
	LastSelected string
}

type repoStateDoc struct {
	Viewed       []string `json:"viewed"`
	LastSelected string   `json:"last_selected,omitempty"`
}

func (rs repoState) MarshalJSON() ([]byte, error) {
	paths := make([]string, 0, len(rs.Viewed))
	for p, v := range rs.Viewed {
		if v {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return json.Marshal(repoStateDoc{Viewed: paths, LastSelected: rs.LastSelected})
}

func (rs *repoState) UnmarshalJSON(b []byte) error {
	var doc repoStateDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	rs.Viewed = make(map[string]bool, len(doc.Viewed))
	for _, p := range doc.Viewed {
		rs.Viewed[p] = true
	}
	rs.LastSelected = doc.LastSelected
	return nil
}

// State holds viewed-file sets and last-selected files, keyed by
// canonicalized repo root path.
type State struct {
	path  string
	repos map[string]*repoState
}

type stateDoc struct {
	Version int                   `json:"version"`
	Repos   map[string]*repoState `json:"repos"`
}

// Load reads the review-state file at path, returning an empty State if it
// does not exist. An unsupported version is a load error; the caller may
// elect to treat it as empty.
func Load(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{path: path, repos: map[string]*repoState{}}, nil
		}
		return nil, err
	}

	var doc stateDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("review: parse %s: %w", path, err)
	}
	if doc.Version != stateVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", ErrUnsupportedVersion, doc.Version, stateVersion)
	}
	if doc.Repos == nil {
		doc.Repos = map[string]*repoState{}
	}
	return &State{path: path, repos: doc.Repos}, nil
}

// Empty returns a State with no stored data, for callers that elect to
// recover from a load error by starting fresh.
func Empty(path string) *State {
	return &State{path: path, repos: map[string]*repoState{}}
}

func (s *State) repoFor(repoRoot string) *repoState {
	rs, ok := s.repos[repoRoot]
	if !ok {
		rs = &repoState{Viewed: map[string]bool{}}
		s.repos[repoRoot] = rs
	}
	return rs
}

// IsViewed reports whether path has been marked viewed under repoRoot.
func (s *State) IsViewed(repoRoot, path string) bool {
	rs, ok := s.repos[repoRoot]
	if !ok {
		return false
	}
	return rs.Viewed[path]
}

// MarkViewed records path as viewed under repoRoot.
func (s *State) MarkViewed(repoRoot, path string) {
	s.repoFor(repoRoot).Viewed[path] = true
}

// Unmark clears path's viewed flag under repoRoot.
func (s *State) Unmark(repoRoot, path string) {
	if rs, ok := s.repos[repoRoot]; ok {
		delete(rs.Viewed, path)
	}
}

// SetLastSelected records path as the last-selected file under repoRoot.
func (s *State) SetLastSelected(repoRoot, path string) {
	s.repoFor(repoRoot).LastSelected = path
}

// LastSelected returns the last-selected file under repoRoot, or "" if
// none has been recorded.
func (s *State) LastSelected(repoRoot string) string {
	rs, ok := s.repos[repoRoot]
	if !ok {
		return ""
	}
	return rs.LastSelected
}

// Save atomically persists the state: serialize to a sibling temp file,
// fsync where available, rename into place. A crash between serialize and
// rename leaves the prior file readable and parseable.
func (s *State) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	doc := stateDoc{Version: stateVersion, Repos: s.repos}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".review-*.tmp")
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
