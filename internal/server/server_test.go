package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/TrendScanner/internal/metrics"
	"github.com/Alias1177/TrendScanner/internal/model"
	"github.com/Alias1177/TrendScanner/internal/scan"
	"github.com/Alias1177/TrendScanner/internal/source/synthetic"
)

// stubScanner records start calls and answers with canned values
type stubScanner struct {
	startErr  error
	snapshot  scan.Snapshot
	busy      bool
	settings  model.Settings
	universe  []string
	startCall int
}

func (s *stubScanner) Start(_ context.Context, settings model.Settings, universe []string) (*scan.Handle, error) {
	s.startCall++
	s.settings = settings
	s.universe = universe
	if s.startErr != nil {
		return nil, s.startErr
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &scan.Handle{ID: "scan-1"}, nil
}

func (s *stubScanner) Snapshot() scan.Snapshot { return s.snapshot }
func (s *stubScanner) Busy() bool { return s.busy }

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newStubServer(stub *stubScanner) http.Handler {
	return New(stub, Options{Settings: model.DefaultSettings(), Universe: []string{"BTC", "ETH"}}, zerolog.Nop()).Handler()
}

func TestHealth(t *testing.T) {
	h := newStubServer(&stubScanner{busy: true})

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","scanning":true}`, rec.Body.String())
}

func TestStartScanDefaults(t *testing.T) {
	stub := &stubScanner{}
	h := newStubServer(stub)

	rec := do(t, h, http.MethodPost, "/api/scans", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"scan_id":"scan-1","state":"running"}`, rec.Body.String())
	assert.Equal(t, []string{"BTC", "ETH"}, stub.universe)
	assert.Equal(t, model.DefaultSettings(), stub.settings)
}

func TestStartScanOverrides(t *testing.T) {
	stub := &stubScanner{}
	h := newStubServer(stub)

	body := `{"settings":{"trend_sensitivity":"high","timeframes":["15m"]},"universe":["sol"," link "]}`
	rec := do(t, h, http.MethodPost, "/api/scans", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	assert.Equal(t, []string{"SOL", "LINK"}, stub.universe)
	assert.Equal(t, model.SensitivityHigh, stub.settings.TrendSensitivity)
	assert.Equal(t, []string{"15m"}, stub.settings.Timeframes)
	assert.Equal(t, 70.0, stub.settings.RSIOverbought, "untouched fields keep configured values")
}

func TestStartScanErrors(t *testing.T) {
	tests := []struct {
		name   string
		stub   *stubScanner
		body   string
		status int
	}{
		{"busy", &stubScanner{startErr: scan.ErrScanInProgress}, "", http.StatusConflict},
		{"invalid settings", &stubScanner{}, `{"settings":{"rsi_oversold":90}}`, http.StatusBadRequest},
		{"malformed body", &stubScanner{}, `{"settings":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newStubServer(tt.stub), http.MethodPost, "/api/scans", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestLatestSortsAndFilters(t *testing.T) {
	stub := &stubScanner{snapshot: scan.Snapshot{
		ScanID: "scan-1",
		State:  scan.StateCompleted,
		Results: []model.AssetResult{
			{Symbol: "ETH", ROIScore: 40, Volume24h: 10},
			{Symbol: "BTC", ROIScore: 90, Volume24h: 5},
			{Symbol: "BCH", ROIScore: 20, Volume24h: 50},
		},
	}}
	h := newStubServer(stub)

	rec := do(t, h, http.MethodGet, "/api/scans/latest?sort=volume&q=b", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap scan.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Results, 2)
	assert.Equal(t, "BCH", snap.Results[0].Symbol)
	assert.Equal(t, "BTC", snap.Results[1].Symbol)
	assert.Equal(t, scan.StateCompleted, snap.State)
}

func TestEndToEndSyntheticScan(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	scanner := scan.New(nil, synthetic.NewSeeded(4), scan.Options{BatchSize: 2, ForceSynthetic: true}, m, zerolog.Nop())

	h := New(scanner, Options{
		Settings: model.DefaultSettings(),
		Universe: []string{"BTC", "ETH", "SOL"},
		Gatherer: reg,
	}, zerolog.Nop()).Handler()

	rec := do(t, h, http.MethodPost, "/api/scans", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		return scanner.Snapshot().State == scan.StateCompleted
	}, 10*time.Second, 10*time.Millisecond)

	rec = do(t, h, http.MethodGet, "/api/scans/latest?sort=symbol", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap scan.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Results, 3)
	assert.Equal(t, "BTC", snap.Results[0].Symbol)
	assert.True(t, snap.UsingSynthetic)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "trendscanner_batches_total 2")
}
