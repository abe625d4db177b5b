// Package tracing wires OpenTelemetry for icon resolution. Only the cold path
// (a registry miss that reaches the second tier or the loaders) is traced;
// LRU hits never start a span.
package tracing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Exporter names accepted in Config.Exporter.
const (
	ExporterNone   = "none"
	ExporterFile   = "file"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const (
	defaultServiceName  = "iconkit"
	defaultOTLPEndpoint = "localhost:4317"
)

// Config selects where spans go. A disabled config yields a no-op tracer.
type Config struct {
	Enabled      bool
	Exporter     string
	FilePath     string  // JSONL output for ExporterFile
	OTLPEndpoint string  // collector address for ExporterOTLP
	SampleRate   float64 // fraction of root spans kept; <= 0 means all
	ServiceName  string
}

// DefaultConfig has tracing off with the file exporter preselected.
func DefaultConfig() Config {
	return Config{
		Exporter:     ExporterFile,
		OTLPEndpoint: defaultOTLPEndpoint,
		SampleRate:   1.0,
		ServiceName:  defaultServiceName,
	}
}

type exporterFunc func(Config) (sdktrace.SpanExporter, error)

var exporters = map[string]exporterFunc{
	ExporterFile: func(cfg Config) (sdktrace.SpanExporter, error) {
		if cfg.FilePath == "" {
			return nil, errors.New("file_path required for file exporter")
		}
		return NewFileExporter(cfg.FilePath)
	},
	ExporterStdout: func(Config) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	},
	ExporterOTLP: func(cfg Config) (sdktrace.SpanExporter, error) {
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		return otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
	},
	// Spans are still created and sampled, just never exported.
	ExporterNone: func(Config) (sdktrace.SpanExporter, error) { return nil, nil },
	"":           func(Config) (sdktrace.SpanExporter, error) { return nil, nil },
}

// Provider owns the SDK tracer provider when tracing is enabled.
type Provider struct {
	sdk    *sdktrace.TracerProvider
	tracer trace.Tracer
}

// NewProvider builds a provider for cfg and installs it as the global
// OpenTelemetry provider. Extra span processors (tests use a recorder) are
// attached alongside the exporter.
func NewProvider(cfg Config, processors ...sdktrace.SpanProcessor) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(defaultServiceName)}, nil
	}

	newExporter, ok := exporters[cfg.Exporter]
	if !ok {
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
	}
	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 1.0
	}

	opts := []sdktrace.TracerProviderOption{
		// Schemaless so the resource never conflicts with resource.Default().
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	for _, sp := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(sp))
	}

	sdk := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(sdk)
	return &Provider{sdk: sdk, tracer: sdk.Tracer(name)}, nil
}

// Tracer returns the tracer to hand to the registry.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p.sdk != nil
}

// Shutdown exports buffered spans and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}
