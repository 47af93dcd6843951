// Package worker runs diff load/compute/highlight off the UI goroutine so
// the AppLoop's redraw tick never blocks on git I/O or tokenization.
package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/highlight"
	"github.com/quickdiff/quickdiff/internal/textbuf"
)

// ErrorKind classifies a Response's failure, mirroring the closed set the
// rest of the module uses for collaborator and internal failures.
type ErrorKind int

const (
	ErrInternal ErrorKind = iota
	ErrSource
	ErrCanceled
)

// FileSelector names the file a Request should load. It is opaque to the
// worker: Loader resolves it into buffers.
type FileSelector struct {
	Path    string
	Context int
}

// Loader fetches both sides of a file's content for a FileSelector. It is
// supplied by the caller (internal/source or internal/patch) so the worker
// stays agnostic of where bytes come from.
type Loader interface {
	Load(ctx context.Context, sel FileSelector) (old, new *textbuf.Buffer, err error)
}

// Request asks the worker to load, diff, and highlight one file.
type Request struct {
	RequestID int64
	Selector  FileSelector
}

// Response carries either a completed result or an error, tagged with the
// RequestID it answers so the caller can discard stale replies. Binary is
// set when either side's TextBuffer was flagged binary; Diff and Highlight
// are left nil in that case, per spec's binary-skip rule.
type Response struct {
	RequestID int64
	Old       *textbuf.Buffer
	New       *textbuf.Buffer
	Diff      *diffcore.Result
	Highlight *highlight.Cache
	Binary    bool
	ErrKind   ErrorKind
	Err       error
}

// Worker runs the load+compute+highlight pipeline on a dedicated goroutine,
// accepting at most one queued request at a time.
type Worker struct {
	loader   Loader
	engine   *diffcore.Engine
	requests chan Request
	responses chan Response
	cancel   context.CancelFunc
	group    *errgroup.Group
}

// New starts the worker loop under ctx, supervised by an errgroup that
// Close waits on after canceling the loop's context.
func New(ctx context.Context, loader Loader) *Worker {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	w := &Worker{
		loader:    loader,
		engine:    diffcore.New(),
		requests:  make(chan Request, 1),
		responses: make(chan Response, 1),
		cancel:    cancel,
		group:     g,
	}

	g.Go(func() error {
		w.run(gctx)
		return nil
	})

	return w
}

// Submit enqueues req, discarding any request already queued but not yet
// picked up by the loop. Submit never blocks.
func (w *Worker) Submit(req Request) {
	for {
		select {
		case w.requests <- req:
			return
		default:
			select {
			case <-w.requests:
			default:
			}
		}
	}
}

// Responses returns the channel on which completed Responses arrive. The
// caller must compare RequestID against the last-submitted id and discard
// stale responses.
func (w *Worker) Responses() <-chan Response {
	return w.responses
}

// Close stops the worker loop and waits for it to exit, guaranteeing no
// orphan goroutine survives app shutdown.
func (w *Worker) Close() {
	w.cancel()
	_ = w.group.Wait()
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-w.requests:
			if !ok {
				return
			}
			resp := w.process(ctx, req)
			select {
			case w.responses <- resp:
			case <-ctx.Done():
				return
			}
		}
	}
}

// process performs one compute step with panic recovery, per spec's
// worker-side-panic contract: the loop must survive a single bad request.
func (w *Worker) process(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{
				RequestID: req.RequestID,
				ErrKind:   ErrInternal,
				Err:       fmt.Errorf("worker: panic during compute: %v", r),
			}
		}
	}()

	old, new, err := w.loader.Load(ctx, req.Selector)
	if err != nil {
		if ctx.Err() != nil {
			return Response{RequestID: req.RequestID, ErrKind: ErrCanceled, Err: ctx.Err()}
		}
		return Response{RequestID: req.RequestID, ErrKind: ErrSource, Err: err}
	}

	if old.IsBinary() || new.IsBinary() {
		return Response{
			RequestID: req.RequestID,
			Old:       old,
			New:       new,
			Binary:    true,
		}
	}

	diff := w.engine.Compute(old, new, req.Selector.Context)
	hl := highlight.Build(req.Selector.Path, old, new)

	return Response{
		RequestID: req.RequestID,
		Old:       old,
		New:       new,
		Diff:      diff,
		Highlight: hl,
	}
}
