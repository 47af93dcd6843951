// Package source implements the ChangedFileSource and BlobSource
// collaborators the core diff engine expects, backed by shelling out to
// git. This package is an external collaborator per the core's scope: it
// is deliberately thin, with no diff computation of its own.
package source

import "context"

// Kind classifies how a changed file differs from its counterpart.
type Kind int

const (
	Modified Kind = iota
	Added
	Deleted
	Untracked
	Renamed
)

// ChangedFile is one entry in the list a ChangedFileSource returns.
type ChangedFile struct {
	Path    string
	Kind    Kind
	OldPath string // set when Kind == Renamed
}

// DiffSource is the tagged discriminant naming what two trees are being
// compared.
type DiffSource struct {
	Mode DiffMode
	// Commit, From, To, BaseRef are interpreted per Mode; only the fields
	// relevant to Mode are populated.
	Commit  string
	From    string
	To      string
	BaseRef string
	PRNum   int // 0 means "current branch's PR" when Mode == PullRequest
}

// DiffMode selects which comparison a DiffSource performs.
type DiffMode int

const (
	WorkingTree DiffMode = iota
	Commit
	Range
	Base
	PullRequest
	Stdin
)

// MaxBlobBytes bounds how much of a single blob BlobSource will read, to
// prevent OOM on pathological inputs.
const MaxBlobBytes = 64 * 1024 * 1024

// ChangedFileSource supplies the ordered list of files that differ under a
// DiffSource.
type ChangedFileSource interface {
	ChangedFiles(ctx context.Context, ds DiffSource) ([]ChangedFile, error)
}

// BlobSource fetches the old and new byte content of one path under a
// DiffSource. Either slice may be empty (Added/Deleted).
type BlobSource interface {
	Blobs(ctx context.Context, ds DiffSource, path string) (old, new []byte, err error)
}
