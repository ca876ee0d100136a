// Package scan drives a full pass over the asset universe in throttled concurrent batches.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alias1177/TrendScanner/internal/analysis/alignment"
	"github.com/Alias1177/TrendScanner/internal/analysis/roi"
	"github.com/Alias1177/TrendScanner/internal/metrics"
	"github.com/Alias1177/TrendScanner/internal/model"
	"github.com/Alias1177/TrendScanner/internal/source"
)

// ErrScanInProgress is returned when a scan is started while another one runs
var ErrScanInProgress = errors.New("scan already in progress")

// State of the latest scan
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Snapshot is the published view of a scan. Results only ever grow while the scan runs.
type Snapshot struct {
	ScanID         string              `json:"scan_id,omitempty"`
	State          State               `json:"state"`
	UsingSynthetic bool                `json:"using_synthetic"`
	Advisory       string              `json:"advisory,omitempty"`
	Error          string              `json:"error,omitempty"`
	Results        []model.AssetResult `json:"results"`
	Batches        int                 `json:"batches"`
	StartedAt      time.Time           `json:"started_at"`
	FinishedAt     time.Time           `json:"finished_at"`
}

// Options tunes batching and receives progress callbacks
type Options struct {
	BatchSize int
	// BatchPause separates batches on live data, SyntheticPause on synthetic data.
	// A non-positive pause is skipped.
	BatchPause     time.Duration
	SyntheticPause time.Duration
	ForceSynthetic bool

	// OnBatch is called exactly once after every batch
	OnBatch func(Snapshot)
	// OnFinish is called once when the scan completes or fails
	OnFinish func(Snapshot)
}

// DefaultOptions returns the stock batching: two assets at a time, 800ms apart on live data
func DefaultOptions() Options {
	return Options{
		BatchSize:      2,
		BatchPause:     800 * time.Millisecond,
		SyntheticPause: 200 * time.Millisecond,
	}
}

// Scanner runs at most one scan at a time
type Scanner struct {
	live      source.Source
	synthetic source.Source
	opts      Options
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	mu     sync.Mutex
	busy   bool
	latest Snapshot
}

// New creates a scanner. live may be nil to always scan synthetic data; m may be nil.
func New(live, synthetic source.Source, opts Options, m *metrics.Metrics, logger zerolog.Logger) *Scanner {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 2
	}
	return &Scanner{
		live:      live,
		synthetic: synthetic,
		opts:      opts,
		metrics:   m,
		logger:    logger.With().Str("component", "scanner").Logger(),
		latest:    Snapshot{State: StateIdle, Results: []model.AssetResult{}},
	}
}

// Handle tracks one started scan
type Handle struct {
	ID   string
	done chan struct{}
	snap Snapshot
	err  error
}

// Done is closed when the scan has finished
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the scan finishes and returns its final snapshot
func (h *Handle) Wait() (Snapshot, error) {
	<-h.done
	return h.snap, h.err
}

// Snapshot returns the latest published state
func (s *Scanner) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest.clone()
}

// Busy reports whether a scan is running
func (s *Scanner) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Run starts a scan and waits for it to finish
func (s *Scanner) Run(ctx context.Context, settings model.Settings, universe []string) (Snapshot, error) {
	h, err := s.Start(ctx, settings, universe)
	if err != nil {
		return Snapshot{}, err
	}
	return h.Wait()
}

// Start validates settings, claims the scanner and runs the scan in the background.
// The previous result set is replaced as soon as the new scan is accepted.
func (s *Scanner) Start(ctx context.Context, settings model.Settings, universe []string) (*Handle, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	s.busy = true
	h := &Handle{ID: uuid.NewString(), done: make(chan struct{})}
	s.latest = Snapshot{
		ScanID:    h.ID,
		State:     StateRunning,
		Results:   []model.AssetResult{},
		StartedAt: time.Now(),
	}
	s.mu.Unlock()

	assets := append([]string(nil), universe...)
	go s.run(ctx, h, settings, assets)

	return h, nil
}

func (s *Scanner) run(ctx context.Context, h *Handle, settings model.Settings, universe []string) {
	logger := s.logger.With().Str("scan_id", h.ID).Logger()
	started := time.Now()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		close(h.done)
	}()

	selection := source.Select(ctx, s.live, s.synthetic, s.opts.ForceSynthetic, logger)
	if selection.Advisory != "" {
		s.metrics.Fallback()
	}
	s.mu.Lock()
	s.latest.UsingSynthetic = selection.Synthetic
	s.latest.Advisory = selection.Advisory
	s.mu.Unlock()

	pause := s.opts.BatchPause
	if selection.Synthetic {
		pause = s.opts.SyntheticPause
	}

	logger.Info().
		Int("assets", len(universe)).
		Str("source", selection.Source.Name()).
		Strs("timeframes", settings.Timeframes).
		Msg("Scan started")

	w := &worker{
		source:     selection.Source,
		synthetic:  selection.Synthetic,
		aggregator: alignment.NewAggregator(selection.Source, s.metrics, logger),
		settings:   settings,
		timeframes: resolveTimeframes(settings.Timeframes),
		metrics:    s.metrics,
		logger:     logger,
	}

	err := s.scanBatches(ctx, w, universe, pause)
	if err != nil {
		logger.Error().Err(err).Msg("Scan failed")
		h.snap = s.finish(StateFailed, err)
		h.err = err
		s.metrics.ScanFinished(string(StateFailed), time.Since(started))
	} else {
		h.snap = s.finish(StateCompleted, nil)
		logger.Info().
			Int("results", len(h.snap.Results)).
			Dur("elapsed", time.Since(started)).
			Msg("Scan completed")
		s.metrics.ScanFinished(string(StateCompleted), time.Since(started))
	}

	if s.opts.OnFinish != nil {
		s.opts.OnFinish(h.snap.clone())
	}
}

func (s *Scanner) scanBatches(ctx context.Context, w *worker, universe []string, pause time.Duration) error {
	results := []model.AssetResult{}

	for start := 0; start < len(universe); start += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+s.opts.BatchSize, len(universe))
		batch, err := w.analyzeBatch(ctx, universe[start:end])
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		results = append(results, batch...)
		snap := s.publish(results)
		s.metrics.BatchPublished()
		w.logger.Debug().
			Int("batch", snap.Batches).
			Int("results", len(snap.Results)).
			Msg("Batch published")

		if s.opts.OnBatch != nil {
			s.opts.OnBatch(snap)
		}

		if end < len(universe) {
			if err := sleep(ctx, pause); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Scanner) publish(results []model.AssetResult) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest.Results = append([]model.AssetResult(nil), results...)
	s.latest.Batches++
	return s.latest.clone()
}

func (s *Scanner) finish(state State, err error) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest.State = state
	s.latest.FinishedAt = time.Now()
	if err != nil {
		s.latest.Error = err.Error()
		s.latest.Results = []model.AssetResult{}
	}
	return s.latest.clone()
}

func (snap Snapshot) clone() Snapshot {
	snap.Results = append([]model.AssetResult{}, snap.Results...)
	return snap
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func resolveTimeframes(codes []string) []model.Timeframe {
	out := make([]model.Timeframe, 0, len(codes))
	for _, code := range codes {
		if tf, ok := model.LookupTimeframe(code); ok {
			out = append(out, tf)
		}
	}
	return out
}

// worker analyzes assets for one scan
type worker struct {
	source     source.Source
	synthetic  bool
	aggregator *alignment.Aggregator
	settings   model.Settings
	timeframes []model.Timeframe
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// analyzeBatch runs the assets concurrently and returns the kept results in batch order
func (w *worker) analyzeBatch(ctx context.Context, symbols []string) ([]model.AssetResult, error) {
	var (
		wg      sync.WaitGroup
		results = make([]*model.AssetResult, len(symbols))
		errs    = make([]error, len(symbols))
	)

	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("analyzing %s: panic: %v", symbol, r)
				}
			}()
			results[i] = w.analyzeAsset(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	kept := make([]model.AssetResult, 0, len(symbols))
	for _, r := range results {
		if r != nil {
			kept = append(kept, *r)
		}
	}
	return kept, nil
}

// analyzeAsset returns nil when the asset is filtered out by the volume floor
func (w *worker) analyzeAsset(ctx context.Context, symbol string) *model.AssetResult {
	ticker, err := w.source.Ticker(ctx, symbol, model.PrimaryQuote)
	if err != nil {
		w.logger.Warn().Err(err).Str("symbol", symbol).Msg("Ticker unavailable, continuing with zero volume")
	} else if !w.synthetic && ticker.QuoteVolume < w.settings.MinVolume {
		w.metrics.AssetFiltered()
		w.logger.Debug().
			Str("symbol", symbol).
			Float64("volume", ticker.QuoteVolume).
			Msg("Below volume floor")
		return nil
	}

	timeframes := make(map[string]model.TimeframeResult, len(w.timeframes))
	for _, tf := range w.timeframes {
		timeframes[tf.Code] = w.aggregator.Analyze(ctx, symbol, tf, w.settings)
	}

	score := roi.Score(ticker.QuoteVolume, timeframes, w.settings.Timeframes, w.settings)
	w.metrics.AssetAnalyzed()

	return &model.AssetResult{
		Symbol:         symbol,
		Volume24h:      ticker.QuoteVolume,
		PriceChange24h: ticker.PriceChangePercent,
		Timeframes:     timeframes,
		ROIScore:       score.Score,
		AlignmentCount: score.AlignmentCount,
		DominantTrend:  score.DominantTrend,
	}
}
