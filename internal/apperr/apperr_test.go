package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestFatalClassifiesNonFatalKinds(t *testing.T) {
	nonFatal := []Kind{HighlightBudgetExceeded, WorkerInternal}
	for _, k := range nonFatal {
		if k.Fatal() {
			t.Fatalf("%s: expected non-fatal", k)
		}
	}

	fatal := []Kind{NotARepo, RevisionUnresolved, FileTooLarge, BlobFetchFailed, PatchParseFailed, PersistenceCorrupt, PersistenceIOFailed}
	for _, k := range fatal {
		if !k.Fatal() {
			t.Fatalf("%s: expected fatal", k)
		}
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("exit status 128")
	err := Wrap(NotARepo, "resolve repo root", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find cause")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty message")
	}
}

func TestKindOfExtractsKindThroughWrapping(t *testing.T) {
	base := New(PatchParseFailed, "unexpected hunk header")
	wrapped := fmt.Errorf("parse diff: %w", base)

	kind, ok := KindOf(wrapped)
	if !ok {
		t.Fatalf("expected KindOf to find wrapped *Error")
	}
	if kind != PatchParseFailed {
		t.Fatalf("KindOf() = %s, want %s", kind, PatchParseFailed)
	}
}

func TestKindOfFalseForPlainError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatalf("expected KindOf to return false for a plain error")
	}
}
