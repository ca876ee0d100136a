package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the scanner. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ScansTotal    *prometheus.CounterVec
	ScanDuration  prometheus.Histogram
	AssetsTotal   *prometheus.CounterVec
	PairFetches   *prometheus.CounterVec
	FallbackTotal prometheus.Counter
	CacheRequests *prometheus.CounterVec
	BatchesTotal  prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendscanner_scans_total",
				Help: "Total number of finished scans by result",
			},
			[]string{"result"},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trendscanner_scan_duration_seconds",
				Help:    "Wall time of a full scan in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		AssetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendscanner_assets_total",
				Help: "Assets processed by outcome (analyzed, filtered)",
			},
			[]string{"outcome"},
		),
		PairFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendscanner_pair_fetch_total",
				Help: "Candle fetches per quote pair by result (ok, missing)",
			},
			[]string{"result"},
		),
		FallbackTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trendscanner_fallback_total",
				Help: "Scans switched to the synthetic source because the live source was unreachable",
			},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendscanner_cache_requests_total",
				Help: "Market data cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
		BatchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trendscanner_batches_total",
				Help: "Published scan batches",
			},
		),
	}

	reg.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.AssetsTotal,
		m.PairFetches,
		m.FallbackTotal,
		m.CacheRequests,
		m.BatchesTotal,
	)

	return m
}

// ScanFinished records the outcome and duration of a scan
func (m *Metrics) ScanFinished(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(result).Inc()
	m.ScanDuration.Observe(elapsed.Seconds())
}

// AssetAnalyzed counts an asset that produced a result
func (m *Metrics) AssetAnalyzed() {
	if m == nil {
		return
	}
	m.AssetsTotal.WithLabelValues("analyzed").Inc()
}

// AssetFiltered counts an asset dropped by the volume floor
func (m *Metrics) AssetFiltered() {
	if m == nil {
		return
	}
	m.AssetsTotal.WithLabelValues("filtered").Inc()
}

// PairFetched counts a per-pair candle fetch
func (m *Metrics) PairFetched(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "missing"
	}
	m.PairFetches.WithLabelValues(result).Inc()
}

// Fallback counts a switch to synthetic data
func (m *Metrics) Fallback() {
	if m == nil {
		return
	}
	m.FallbackTotal.Inc()
}

// CacheResult counts a cache lookup
func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// BatchPublished counts a published batch
func (m *Metrics) BatchPublished() {
	if m == nil {
		return
	}
	m.BatchesTotal.Inc()
}
