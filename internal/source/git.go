package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/quickdiff/quickdiff/internal/util"
)

// GitSource implements ChangedFileSource and BlobSource against a git
// working tree, dispatching on DiffSource.Mode by explicit switch rather
// than per-mode subtyping.
type GitSource struct {
	Dir string // repo root or any path inside it
}

// NewGitSource returns a GitSource rooted at dir.
func NewGitSource(dir string) *GitSource {
	return &GitSource{Dir: dir}
}

// RepoRoot returns the canonicalized top-level directory of the repo
// containing Dir.
func (g *GitSource) RepoRoot(ctx context.Context) (string, error) {
	out, err := util.Run(ctx, g.Dir, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// GitDir returns the absolute .git directory for the repo containing Dir.
func (g *GitSource) GitDir(ctx context.Context) (string, error) {
	out, err := util.Run(ctx, g.Dir, "git", "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *GitSource) ChangedFiles(ctx context.Context, ds DiffSource) ([]ChangedFile, error) {
	switch ds.Mode {
	case WorkingTree:
		return g.changedFilesWorkingTree(ctx)
	case Commit:
		return g.changedFilesRange(ctx, ds.Commit+"^", ds.Commit)
	case Range:
		return g.changedFilesRange(ctx, ds.From, ds.To)
	case Base:
		return g.changedFilesRange(ctx, ds.BaseRef, "HEAD")
	default:
		return nil, fmt.Errorf("source: ChangedFiles not supported for mode %d", ds.Mode)
	}
}

func (g *GitSource) changedFilesWorkingTree(ctx context.Context) ([]ChangedFile, error) {
	out, err := util.Run(ctx, g.Dir, "git", "status", "--porcelain=v2", "--untracked-files=all", "-z")
	if err != nil {
		return nil, err
	}
	return parsePorcelainV2Z([]byte(out))
}

func (g *GitSource) changedFilesRange(ctx context.Context, from, to string) ([]ChangedFile, error) {
	out, err := util.Run(ctx, g.Dir, "git", "diff", "--name-status", "-z", from, to)
	if err != nil {
		return nil, err
	}
	return parseNameStatusZ([]byte(out))
}

func (g *GitSource) Blobs(ctx context.Context, ds DiffSource, path string) (old, new []byte, err error) {
	switch ds.Mode {
	case WorkingTree:
		old, _ = g.showBounded(ctx, "HEAD", path) // empty when HEAD has no such path (Added)
		new, err = readFileBounded(g.Dir, path)
		return old, new, err
	case Commit:
		old, _ = g.showBounded(ctx, ds.Commit+"^", path)
		new, err = g.showBounded(ctx, ds.Commit, path)
		return old, new, err
	case Range:
		old, _ = g.showBounded(ctx, ds.From, path)
		new, err = g.showBounded(ctx, ds.To, path)
		return old, new, err
	case Base:
		old, _ = g.showBounded(ctx, ds.BaseRef, path)
		new, err = g.showBounded(ctx, "HEAD", path)
		return old, new, err
	default:
		return nil, nil, fmt.Errorf("source: Blobs not supported for mode %d", ds.Mode)
	}
}

// showBounded runs `git show rev:path`, truncating the captured stdout at
// MaxBlobBytes so a pathological blob can't exhaust memory.
func (g *GitSource) showBounded(ctx context.Context, rev, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", "show", rev+":"+path)
	if g.Dir != "" {
		cmd.Dir = g.Dir
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	data, readErr := io.ReadAll(io.LimitReader(stdout, MaxBlobBytes+1))
	waitErr := cmd.Wait()
	if waitErr != nil {
		return nil, fmt.Errorf("git show %s:%s: %w (%s)", rev, path, waitErr, strings.TrimSpace(stderr.String()))
	}
	if readErr != nil {
		return nil, readErr
	}
	if len(data) > MaxBlobBytes {
		return nil, fmt.Errorf("source: blob %s:%s exceeds %d bytes", rev, path, MaxBlobBytes)
	}
	return data, nil
}

func readFileBounded(dir, path string) ([]byte, error) {
	full := path
	if dir != "" {
		full = dir + "/" + path
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // deleted from the working tree
		}
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxBlobBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBlobBytes {
		return nil, fmt.Errorf("source: blob %s exceeds %d bytes", path, MaxBlobBytes)
	}
	return data, nil
}

func parsePorcelainV2Z(data []byte) ([]ChangedFile, error) {
	records := bytes.Split(data, []byte{0})
	items := make([]ChangedFile, 0, len(records))

	for i := 0; i < len(records); i++ {
		rec := string(records[i])
		if rec == "" {
			continue
		}

		switch rec[0] {
		case '1', 'u':
			fields := strings.Fields(rec)
			if len(fields) < 2 {
				return nil, fmt.Errorf("source: unexpected porcelain record: %q", rec)
			}
			path := fields[len(fields)-1]
			items = append(items, ChangedFile{Path: path, Kind: kindFromXY(fields[1])})

		case '2':
			fields := strings.Fields(rec)
			if len(fields) < 2 {
				return nil, fmt.Errorf("source: unexpected rename record: %q", rec)
			}
			path := fields[len(fields)-1]
			cf := ChangedFile{Path: path, Kind: Renamed}
			if i+1 < len(records) {
				cf.OldPath = string(records[i+1])
				i++
			}
			items = append(items, cf)

		case '?':
			path := strings.TrimPrefix(rec, "? ")
			items = append(items, ChangedFile{Path: path, Kind: Untracked})

		case '!', '#':
			continue

		default:
			return nil, fmt.Errorf("source: unknown porcelain record: %q", rec)
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

func kindFromXY(xy string) Kind {
	if len(xy) == 0 {
		return Modified
	}
	switch {
	case strings.Contains(xy, "A"):
		return Added
	case strings.Contains(xy, "D"):
		return Deleted
	default:
		return Modified
	}
}

func parseNameStatusZ(data []byte) ([]ChangedFile, error) {
	fields := splitNonEmpty(bytes.Split(data, []byte{0}))
	items := make([]ChangedFile, 0, len(fields))

	for i := 0; i < len(fields); i++ {
		status := fields[i]
		switch {
		case strings.HasPrefix(status, "R"):
			if i+2 >= len(fields) {
				return nil, errors.New("source: truncated rename record in name-status output")
			}
			items = append(items, ChangedFile{Path: fields[i+2], OldPath: fields[i+1], Kind: Renamed})
			i += 2
		case status == "A":
			items = append(items, ChangedFile{Path: fields[i+1], Kind: Added})
			i++
		case status == "D":
			items = append(items, ChangedFile{Path: fields[i+1], Kind: Deleted})
			i++
		default:
			items = append(items, ChangedFile{Path: fields[i+1], Kind: Modified})
			i++
		}
	}
	return items, nil
}

func splitNonEmpty(records [][]byte) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		if len(r) > 0 {
			out = append(out, string(r))
		}
	}
	return out
}
