package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewProviderDisabledReturnsNoopTracer(t *testing.T) {
	p, err := NewProvider(Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if p.Enabled() {
		t.Fatalf("expected disabled provider")
	}

	ctx, span := p.StartDiffCompute(context.Background(), "a.go")
	if ctx == nil || span == nil {
		t.Fatalf("expected non-nil context/span from no-op tracer")
	}
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewProviderEnabledWritesSpansToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	p, err := NewProvider(Config{Enabled: true, FilePath: path})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if !p.Enabled() {
		t.Fatalf("expected enabled provider")
	}

	ctx, span := p.StartRenderFrame(context.Background())
	_ = ctx
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected trace file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected trace file to contain exported span data")
	}
}
