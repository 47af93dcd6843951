// Package applog provides structured logging for quickdiff: a small
// process-global logger keyed by category and level, writing key/value
// fields to a debug log file when enabled via --debug or QUICKDIFF_DEBUG.
package applog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages by the collaborator that emitted
// them.
type Category string

const (
	CatDiff      Category = "diff"
	CatHighlight Category = "highlight"
	CatWorker    Category = "worker"
	CatGit       Category = "git"
	CatPatch     Category = "patch"
	CatComments  Category = "comments"
	CatReview    Category = "review"
	CatUI        Category = "ui"
	CatWatcher   Category = "watcher"
)

type logger struct {
	mu       sync.Mutex
	writer   io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
}

var (
	global logger
	once   sync.Once
)

// Init opens path for append and enables logging at LevelDebug. It returns
// a cleanup func that closes the file; callers defer it.
func Init(path string) (func(), error) {
	var initErr error
	once.Do(func() {
		f, err := tea.LogToFile(path, "quickdiff")
		if err != nil {
			initErr = err
			return
		}
		global.mu.Lock()
		global.writer = f
		global.closer = f
		global.enabled = true
		global.minLevel = LevelDebug
		global.mu.Unlock()
	})
	if initErr != nil {
		return nil, initErr
	}
	return func() {
		global.mu.Lock()
		defer global.mu.Unlock()
		if global.closer != nil {
			_ = global.closer.Close()
		}
	}, nil
}

// SetMinLevel sets the minimum level that is written.
func SetMinLevel(level Level) {
	global.mu.Lock()
	global.minLevel = level
	global.mu.Unlock()
}

func Debug(cat Category, msg string, fields ...any) { emit(LevelDebug, cat, msg, fields...) }
func Info(cat Category, msg string, fields ...any)  { emit(LevelInfo, cat, msg, fields...) }
func Warn(cat Category, msg string, fields ...any)  { emit(LevelWarn, cat, msg, fields...) }
func Error(cat Category, msg string, fields ...any) { emit(LevelError, cat, msg, fields...) }

// ErrorErr logs msg at LevelError with err appended as an "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	emit(LevelError, cat, msg, fields...)
}

func emit(level Level, cat Category, msg string, fields ...any) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if !global.enabled || global.writer == nil || level < global.minLevel {
		return
	}

	ts := time.Now().Format("2006-01-02T15:04:05")
	entry := fmt.Sprintf("%s [%s] [%s] %s", ts, level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		entry += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", fields[len(fields)-1])
	}
	entry += "\n"
	_, _ = global.writer.Write([]byte(entry))
}

// Enabled reports whether logging is currently writing to a file.
func Enabled() bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.enabled
}

// DebugEnabledFromEnv reports whether QUICKDIFF_DEBUG is set to a truthy
// value, for callers that need to decide whether to call Init before flags
// are parsed.
func DebugEnabledFromEnv() bool {
	v := os.Getenv("QUICKDIFF_DEBUG")
	return v != "" && v != "0" && v != "false"
}
