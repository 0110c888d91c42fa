package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocycle/internal/analysis"
	"macrocycle/internal/config"
	"macrocycle/internal/infrastructure"
	"macrocycle/internal/table"
	"macrocycle/internal/testutil"
)

type upload struct {
	field, filename string
	body            []byte
}

func csvUpload(t *testing.T, field string, tbl *table.Table) upload {
	t.Helper()
	path := testutil.WriteCSV(t, t.TempDir(), field+".csv", tbl)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return upload{field: field, filename: field + ".csv", body: data}
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestRouter(t *testing.T, mutate func(*config.ServerConfig)) (http.Handler, *infrastructure.Telemetry) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tel, err := infrastructure.InitializeOTel(config.Default().Telemetry, "test", io.Discard, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	server := config.Default().Server
	server.RateLimit.Enabled = false
	if mutate != nil {
		mutate(&server)
	}
	return NewRouter(RouterDeps{
		Logger:    logger,
		Telemetry: tel,
		Service:   analysis.NewAnalyzer(logger, tel.Metrics),
		Options:   analysis.DefaultOptions(),
		Server:    server,
		Version:   "1.2.3",
	}), tel
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		StatusCode int             `json:"status_code"`
		ErrorCode  string          `json:"error_code"`
		Message    string          `json:"message"`
		Details    json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealthz(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAnalyze(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	req := multipartRequest(t, "/api/v1/analyze",
		map[string]string{FieldBaseQuarter: "1990 1Q"},
		csvUpload(t, FieldQuarterly, testutil.Economy()),
		csvUpload(t, FieldAnnual, testutil.Population(10)),
	)
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `"1990 1Q"`, string(body["base_quarter"]))

	var cycle []map[string]any
	require.NoError(t, json.Unmarshal(body["cycle"], &cycle))
	assert.Len(t, cycle, 40)

	var stats []map[string]any
	require.NoError(t, json.Unmarshal(body["statistics"], &stats))
	require.Len(t, stats, 3)
	assert.Equal(t, "GDP", stats[0]["series"])
	assert.Equal(t, 1.0, stats[0]["correlation_with_gdp_cycle"])

	assert.Contains(t, string(body["growth"]), `"qoq_pct":null`)
	assert.NotEmpty(t, body["productivity"])
	assert.NotContains(t, body, "failures")
}

func TestAnalyze_PartialFailure(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	tbl := testutil.Economy()
	var kept []table.Row
	for _, r := range tbl.Rows {
		if !strings.Contains(strings.ToLower(r.Label), "consumption") {
			kept = append(kept, r)
		}
	}
	tbl.Rows = kept

	rec := serve(h, multipartRequest(t, "/api/v1/analyze", nil, csvUpload(t, FieldQuarterly, tbl)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Cycle    []any             `json:"cycle"`
		Growth   []any             `json:"growth"`
		Failures map[string]string `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Cycle)
	assert.NotEmpty(t, body.Growth)
	assert.Contains(t, body.Failures[analysis.TaskBusinessCycle], "consumption")
}

func TestAnalyze_Errors(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	tests := []struct {
		name     string
		fields   map[string]string
		files    func(t *testing.T) []upload
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing quarterly file",
			files:    func(t *testing.T) []upload { return nil },
			wantCode: http.StatusBadRequest,
			wantErr:  "MISSING_PARAMETER",
		},
		{
			name:   "base quarter outside data",
			fields: map[string]string{FieldBaseQuarter: "2030 1Q"},
			files: func(t *testing.T) []upload {
				return []upload{csvUpload(t, FieldQuarterly, testutil.Economy())}
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "OUT_OF_RANGE",
		},
		{
			name:   "unparseable base quarter",
			fields: map[string]string{FieldBaseQuarter: "first quarter"},
			files: func(t *testing.T) []upload {
				return []upload{csvUpload(t, FieldQuarterly, testutil.Economy())}
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_CONFIGURATION",
		},
		{
			name: "unsupported upload",
			files: func(t *testing.T) []upload {
				return []upload{{field: FieldQuarterly, filename: "q.pdf", body: []byte("%PDF")}}
			},
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "DATA_FORMAT",
		},
		{
			name:   "base quarter too long",
			fields: map[string]string{FieldBaseQuarter: strings.Repeat("1", 40)},
			files: func(t *testing.T) []upload {
				return []upload{csvUpload(t, FieldQuarterly, testutil.Economy())}
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, multipartRequest(t, "/api/v1/analyze", tt.fields, tt.files(t)...))
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			body := decodeError(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantErr, body.Error.ErrorCode)
		})
	}
}

func TestAnalyze_NotMultipart(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec).Error.ErrorCode)
}

func TestAnalyze_PayloadTooLarge(t *testing.T) {
	h, _ := newTestRouter(t, func(s *config.ServerConfig) { s.MaxUploadBytes = 64 })

	rec := serve(h, multipartRequest(t, "/api/v1/analyze", nil, csvUpload(t, FieldQuarterly, testutil.Economy())))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAnalyze_RateLimited(t *testing.T) {
	h, _ := newTestRouter(t, func(s *config.ServerConfig) {
		s.RateLimit.Enabled = true
		s.RateLimit.RPS = 0.001
		s.RateLimit.Burst = 1
	})

	first := serve(h, multipartRequest(t, "/api/v1/quarters", nil, csvUpload(t, FieldQuarterly, testutil.ScenarioA())))
	assert.Equal(t, http.StatusOK, first.Code)
	second := serve(h, multipartRequest(t, "/api/v1/quarters", nil, csvUpload(t, FieldQuarterly, testutil.ScenarioA())))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	health := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code, "health checks are not rate limited")
}

func TestQuarters(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := serve(h, multipartRequest(t, "/api/v1/quarters", nil, csvUpload(t, FieldQuarterly, testutil.ScenarioA())))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ax analysis.Axis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ax))
	assert.Len(t, ax.Quarters, 6)
	assert.Equal(t, "1990 1Q", ax.First)
	assert.Equal(t, "1991 2Q", ax.Last)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	serve(h, multipartRequest(t, "/api/v1/analyze", nil, csvUpload(t, FieldQuarterly, testutil.Economy())))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, body, `analysis_runs_total{status="success",task="business_cycle"} 1`)
	assert.Contains(t, body, "analysis_stage_duration_seconds_bucket")
}

func TestNotFound(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.ErrorCode)
}
