// Package watcher debounces filesystem change events from fsnotify into a
// single "refresh" signal, per the core's Watcher collaborator contract.
package watcher

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last observed event before
// a refresh signal fires, coalescing bursty saves (e.g. a formatter
// rewriting several files) into one signal.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches a set of directories and emits a debounced refresh
// signal on Signals() whenever files under them change.
type Watcher struct {
	fsw      *fsnotify.Watcher
	signals  chan struct{}
	debounce time.Duration
}

// New starts watching dirs (non-recursively; callers add subdirectories as
// they're discovered via AddDir).
func New(dirs []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{fsw: fsw, signals: make(chan struct{}, 1), debounce: debounce}, nil
}

// AddDir starts watching an additional directory, e.g. one created after
// startup.
func (w *Watcher) AddDir(dir string) error {
	return w.fsw.Add(dir)
}

// Signals returns the channel on which a debounced refresh signal arrives.
// It is buffered 1 and coalescing: a pending unread signal is not doubled.
func (w *Watcher) Signals() <-chan struct{} {
	return w.signals
}

// Run processes fsnotify events until ctx is canceled, debouncing bursts
// into single Signals() sends.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			w.emit()

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Surface nothing further: a transient watch error should not
			// stop the app; the next successful event still debounces and
			// emits normally.
		}
	}
}

func (w *Watcher) emit() {
	select {
	case w.signals <- struct{}{}:
	default:
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
