package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, ExporterFile, cfg.Exporter)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "iconkit", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), SpanMaterialize)
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no context")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporter(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces", "iconkit.jsonl")

	provider, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    ExporterFile,
		FilePath:    tracePath,
		ServiceName: "iconkit-test",
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), SpanMaterialize)
	span.SetAttributes(
		attribute.String(AttrIconNamespace, "ion"),
		attribute.String(AttrIconName, "home"),
	)
	require.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 1)
	require.Equal(t, SpanMaterialize, records[0].Name)
	require.Equal(t, "ion", records[0].Attributes[AttrIconNamespace])
}

func TestNewProvider_FileExporterRequiresPath(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: ExporterFile})
	require.ErrorContains(t, err, "file_path required")
}

func TestNewProvider_NoExporter(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider, err := NewProvider(Config{Enabled: true, Exporter: ExporterNone}, recorder)
	require.NoError(t, err)

	_, span := provider.Tracer().Start(context.Background(), SpanMaterialize)
	require.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, provider.Shutdown(context.Background()))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, SpanMaterialize, ended[0].Name())
}

func TestNewProvider_SampleRateZeroKeepsAll(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider, err := NewProvider(Config{Enabled: true, SampleRate: 0}, recorder)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	for range 5 {
		_, span := provider.Tracer().Start(context.Background(), SpanLoaderCall)
		span.End()
	}
	require.Len(t, recorder.Ended(), 5)
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.ErrorContains(t, err, "unsupported exporter type: zipkin")
}

func TestFileExporter_WritesStatusAndEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.jsonl")
	exporter, err := NewFileExporter(path)
	require.NoError(t, err)

	start := time.Now()
	stub := tracetest.SpanStub{
		Name:      SpanMaterialize,
		StartTime: start,
		EndTime:   start.Add(2 * time.Millisecond),
		Status:    sdktrace.Status{Code: codes.Error, Description: "not found"},
		Events:    []sdktrace.Event{{Name: EventLoaderMiss, Time: start}},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecords(t, path)
	require.Len(t, records, 1)
	require.Equal(t, "ERROR", records[0].Status)
	require.Equal(t, "not found", records[0].StatusMsg)
	require.Equal(t, []string{EventLoaderMiss}, records[0].Events)
	require.InDelta(t, 2.0, records[0].DurationMs, 0.001)

	err = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.Error(t, err, "export after shutdown fails")
}

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}
