// Package telemetry records diff-compute and render-frame durations as
// OpenTelemetry spans when the metrics flag is enabled, instead of
// hand-rolled timing log lines.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "quickdiff"

// Config selects whether metrics are recorded and where spans are written.
type Config struct {
	// Enabled gates span recording. When false, Provider returns a no-op
	// tracer with zero overhead.
	Enabled bool
	// FilePath, when set, writes the diagnostic trace stream there instead
	// of stdout (so it doesn't interleave with the alt-screen TUI).
	FilePath string
}

// Provider wraps the configured TracerProvider and its Tracer.
type Provider struct {
	tp      *sdktrace.TracerProvider
	tracer  trace.Tracer
	closer  func() error
	enabled bool
}

// NewProvider constructs a Provider from cfg. With Enabled=false it returns
// a Provider backed by the otel no-op tracer obtained from the global
// TracerProvider before any SDK provider is installed.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: otel.Tracer(serviceName), enabled: false}, nil
	}

	var out *os.File
	var closer func() error
	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("telemetry: open trace file: %w", err)
		}
		out = f
		closer = f.Close
	} else {
		out = os.Stdout
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	return &Provider{
		tp:      tp,
		tracer:  tp.Tracer(serviceName),
		closer:  closer,
		enabled: true,
	}, nil
}

// Tracer returns the configured tracer; safe to call regardless of Enabled.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans are actually exported.
func (p *Provider) Enabled() bool {
	return p.enabled
}

// Shutdown flushes pending spans and releases the trace file, if any.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp != nil {
		if err := p.tp.Shutdown(ctx); err != nil {
			return err
		}
	}
	if p.closer != nil {
		return p.closer()
	}
	return nil
}

// StartDiffCompute starts a span around a DiffWorker compute cycle for the
// given file path.
func (p *Provider) StartDiffCompute(ctx context.Context, path string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "diff.compute", trace.WithAttributes(attribute.String("path", path)))
}

// StartRenderFrame starts a span around one Renderer frame.
func (p *Provider) StartRenderFrame(ctx context.Context) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "render.frame")
}
