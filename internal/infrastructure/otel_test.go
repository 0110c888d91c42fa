package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocycle/internal/config"
)

func newTelemetry(t *testing.T, exporter string, out *bytes.Buffer) *Telemetry {
	t.Helper()
	cfg := config.Default().Telemetry
	cfg.TraceExporter = exporter
	var w io.Writer
	if out != nil {
		w = out
	}
	tel, err := InitializeOTel(cfg, "test", w, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })
	return tel
}

func familyNames(t *testing.T, tel *Telemetry) []string {
	t.Helper()
	families, err := tel.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	return names
}

func hasPrefix(names []string, prefix string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func TestInitializeOTel_NoTracing(t *testing.T) {
	tel := newTelemetry(t, "none", nil)

	assert.Nil(t, tel.TracerProvider)
	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Metrics)

	_, span := tel.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitializeOTel_StdoutTracing(t *testing.T) {
	var out bytes.Buffer
	tel := newTelemetry(t, "stdout", &out)
	require.NotNil(t, tel.TracerProvider)

	_, span := tel.Tracer.Start(context.Background(), "hp_filter")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, tel.TracerProvider.ForceFlush(context.Background()))
	assert.Contains(t, out.String(), "hp_filter")
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.TraceExporter = "jaeger"
	_, err := InitializeOTel(cfg, "test", nil, nil)
	assert.ErrorContains(t, err, "unsupported trace exporter")
}

func TestMetrics_Recorded(t *testing.T) {
	tel := newTelemetry(t, "none", nil)
	ctx := context.Background()

	tel.Metrics.RecordRun(ctx, "business_cycle", 120*time.Millisecond, nil)
	tel.Metrics.RecordRun(ctx, "productivity", time.Millisecond, errors.New("boom"))
	tel.Metrics.RecordStage(ctx, "hp_filter", time.Millisecond)
	tel.Metrics.RecordQuarters(ctx, 40)
	tel.Metrics.RecordHTTPRequest(ctx, http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)

	names := familyNames(t, tel)
	for _, prefix := range []string{
		"analysis_runs",
		"analysis_run_duration",
		"analysis_stage_duration",
		"analysis_quarters_processed",
		"http_requests",
		"go_goroutines",
	} {
		assert.True(t, hasPrefix(names, prefix), "missing metric family %s in %v", prefix, names)
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRun(context.Background(), "x", time.Second, nil)
		m.RecordStage(context.Background(), "x", time.Second)
		m.RecordQuarters(context.Background(), 1)
		m.RecordHTTPRequest(context.Background(), "GET", "/", 200, time.Second)
	})
}

func TestTelemetry_HandlerAndTextfile(t *testing.T) {
	tel := newTelemetry(t, "none", nil)
	tel.Metrics.RecordStage(context.Background(), "deflate", time.Millisecond)

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "analysis_stage_duration")

	path := filepath.Join(t.TempDir(), "macrocycle.prom")
	require.NoError(t, tel.WriteTextfile(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "analysis_stage_duration")
}
