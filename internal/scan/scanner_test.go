package scan

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/TrendScanner/internal/metrics"
	"github.com/Alias1177/TrendScanner/internal/model"
	"github.com/Alias1177/TrendScanner/internal/source"
	"github.com/Alias1177/TrendScanner/internal/source/synthetic"
)

// liveStub is a controllable live source
type liveStub struct {
	mu          sync.Mutex
	pingErr     error
	volumes     map[string]float64
	tickerErr   map[string]error
	panicOn     string
	gate        chan struct{}
	onTicker    func()
	candleCalls int
	gen         *synthetic.Generator
}

func newLiveStub() *liveStub {
	return &liveStub{
		volumes:   map[string]float64{},
		tickerErr: map[string]error{},
		gen:       synthetic.New(rand.New(rand.NewSource(11))),
	}
}

func (l *liveStub) Name() string { return "live-stub" }

func (l *liveStub) Ping(context.Context) error { return l.pingErr }

func (l *liveStub) Candles(ctx context.Context, base, quote, interval string, limit int) ([]model.Candle, error) {
	l.mu.Lock()
	l.candleCalls++
	l.mu.Unlock()
	return l.gen.Candles(ctx, base, quote, interval, limit)
}

func (l *liveStub) Ticker(ctx context.Context, base, quote string) (model.Ticker, error) {
	if l.onTicker != nil {
		l.onTicker()
	}
	if l.gate != nil {
		<-l.gate
	}
	if base == l.panicOn {
		panic("corrupt ticker payload")
	}
	if err := l.tickerErr[base]; err != nil {
		return model.Ticker{}, err
	}
	return model.Ticker{QuoteVolume: l.volumes[base], PriceChangePercent: 1.25}, nil
}

func (l *liveStub) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.candleCalls
}

func quickOptions() Options {
	return Options{BatchSize: 2}
}

func symbols(results []model.AssetResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Symbol
	}
	return out
}

func TestBatchesPublishIncrementally(t *testing.T) {
	var published []Snapshot
	opts := quickOptions()
	opts.ForceSynthetic = true
	opts.OnBatch = func(s Snapshot) { published = append(published, s) }

	gen := synthetic.New(rand.New(rand.NewSource(5)))
	s := New(nil, gen, opts, nil, zerolog.Nop())

	universe := []string{"BTC", "ETH", "SOL", "XRP", "ADA"}
	final, err := s.Run(context.Background(), model.DefaultSettings(), universe)
	require.NoError(t, err)

	require.Len(t, published, 3)
	assert.Equal(t, []string{"BTC", "ETH"}, symbols(published[0].Results))
	assert.Equal(t, []string{"BTC", "ETH", "SOL", "XRP"}, symbols(published[1].Results))
	assert.Equal(t, universe, symbols(published[2].Results))
	for i := 1; i < len(published); i++ {
		assert.Equal(t, published[i-1].Results, published[i].Results[:len(published[i-1].Results)])
		assert.Equal(t, i+1, published[i].Batches)
	}

	assert.Equal(t, StateCompleted, final.State)
	assert.Equal(t, universe, symbols(final.Results))
	assert.True(t, final.UsingSynthetic)
	assert.Empty(t, final.Advisory)
	assert.NotEmpty(t, final.ScanID)
	assert.False(t, final.FinishedAt.Before(final.StartedAt))
}

func TestResultsCarryEverySelectedTimeframe(t *testing.T) {
	opts := quickOptions()
	opts.ForceSynthetic = true
	s := New(nil, synthetic.NewSeeded(9), opts, nil, zerolog.Nop())

	settings := model.DefaultSettings()
	settings.Timeframes = []string{"15m", "1d"}

	final, err := s.Run(context.Background(), settings, []string{"LINK"})
	require.NoError(t, err)
	require.Len(t, final.Results, 1)

	asset := final.Results[0]
	require.Len(t, asset.Timeframes, 2)
	assert.Len(t, asset.Timeframes["15m"].Pairs, len(model.QuotePairs))
	assert.GreaterOrEqual(t, asset.ROIScore, 0)
	assert.LessOrEqual(t, asset.ROIScore, 100)
	assert.LessOrEqual(t, asset.AlignmentCount, 2)
}

func TestUnreachableLiveSourceFallsBack(t *testing.T) {
	live := newLiveStub()
	live.pingErr = errors.New("dial tcp: i/o timeout")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s := New(live, synthetic.NewSeeded(3), quickOptions(), m, zerolog.Nop())

	final, err := s.Run(context.Background(), model.DefaultSettings(), []string{"BTC", "DOGE", "QQQ"})
	require.NoError(t, err)

	assert.Zero(t, live.calls(), "live source must not be used after a failed probe")
	assert.True(t, final.UsingSynthetic)
	assert.Equal(t, source.FallbackAdvisory, final.Advisory)
	assert.Len(t, final.Results, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("completed")))
}

func TestVolumeFloorOnLiveData(t *testing.T) {
	live := newLiveStub()
	live.volumes["BTC"] = 5_000_000
	live.volumes["THIN"] = 10
	live.tickerErr["GHOST"] = errors.New("ticker timeout")

	m := metrics.New(prometheus.NewRegistry())
	s := New(live, synthetic.NewSeeded(1), quickOptions(), m, zerolog.Nop())

	final, err := s.Run(context.Background(), model.DefaultSettings(), []string{"BTC", "THIN", "GHOST"})
	require.NoError(t, err)

	require.Equal(t, []string{"BTC", "GHOST"}, symbols(final.Results))
	assert.False(t, final.UsingSynthetic)
	assert.Equal(t, 5_000_000.0, final.Results[0].Volume24h)
	assert.Equal(t, 1.25, final.Results[0].PriceChange24h)

	ghost := final.Results[1]
	assert.Zero(t, ghost.Volume24h)
	assert.Zero(t, ghost.PriceChange24h)
	assert.Len(t, ghost.Timeframes, len(model.DefaultTimeframes))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AssetsTotal.WithLabelValues("filtered")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AssetsTotal.WithLabelValues("analyzed")))
}

func TestSyntheticDataSkipsVolumeFloor(t *testing.T) {
	opts := quickOptions()
	opts.ForceSynthetic = true
	s := New(nil, synthetic.NewSeeded(2), opts, nil, zerolog.Nop())

	settings := model.DefaultSettings()
	settings.MinVolume = 1e15

	final, err := s.Run(context.Background(), settings, []string{"BTC", "UNKNOWN"})
	require.NoError(t, err)
	assert.Len(t, final.Results, 2)
}

func TestSecondScanRejectedWhileRunning(t *testing.T) {
	live := newLiveStub()
	live.volumes["BTC"] = 1e9
	live.gate = make(chan struct{})

	s := New(live, synthetic.NewSeeded(1), quickOptions(), nil, zerolog.Nop())

	first, err := s.Start(context.Background(), model.DefaultSettings(), []string{"BTC"})
	require.NoError(t, err)
	assert.True(t, s.Busy())

	_, err = s.Start(context.Background(), model.DefaultSettings(), []string{"ETH"})
	assert.ErrorIs(t, err, ErrScanInProgress)
	assert.Equal(t, StateRunning, s.Snapshot().State)
	assert.Equal(t, first.ID, s.Snapshot().ScanID)

	close(live.gate)
	snap, err := first.Wait()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, snap.State)
	assert.False(t, s.Busy())

	second, err := s.Start(context.Background(), model.DefaultSettings(), []string{"BTC"})
	require.NoError(t, err)
	_, err = second.Wait()
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPanicFailsScanAndClearsResults(t *testing.T) {
	live := newLiveStub()
	live.volumes["BTC"] = 1e9
	live.volumes["ETH"] = 1e9
	live.panicOn = "SOL"

	var finished []Snapshot
	opts := quickOptions()
	opts.OnFinish = func(s Snapshot) { finished = append(finished, s) }

	m := metrics.New(prometheus.NewRegistry())
	s := New(live, synthetic.NewSeeded(1), opts, m, zerolog.Nop())

	final, err := s.Run(context.Background(), model.DefaultSettings(), []string{"BTC", "ETH", "SOL"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOL")

	assert.Equal(t, StateFailed, final.State)
	assert.Contains(t, final.Error, "corrupt ticker payload")
	assert.Empty(t, final.Results)
	assert.Empty(t, s.Snapshot().Results)
	require.Len(t, finished, 1)
	assert.Equal(t, StateFailed, finished[0].State)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("failed")))
	assert.False(t, s.Busy())
}

func TestCanceledContextFailsScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := quickOptions()
	opts.ForceSynthetic = true
	s := New(nil, synthetic.NewSeeded(1), opts, nil, zerolog.Nop())

	final, err := s.Run(ctx, model.DefaultSettings(), []string{"BTC"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, final.State)
}

func TestCancelDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := Options{
		BatchSize:      1,
		SyntheticPause: time.Hour,
		ForceSynthetic: true,
		OnBatch:        func(Snapshot) { cancel() },
	}
	s := New(nil, synthetic.NewSeeded(1), opts, nil, zerolog.Nop())

	final, err := s.Run(ctx, model.DefaultSettings(), []string{"BTC", "ETH"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, final.Batches)
}

func TestCancelDuringLastBatchFailsScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	live := newLiveStub()
	live.volumes["BTC"] = 1e9
	live.onTicker = cancel

	batches := 0
	opts := quickOptions()
	opts.OnBatch = func(Snapshot) { batches++ }
	s := New(live, synthetic.NewSeeded(1), opts, nil, zerolog.Nop())

	final, err := s.Run(ctx, model.DefaultSettings(), []string{"BTC"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, final.State)
	assert.Empty(t, final.Results)
	assert.Zero(t, batches)
}

func TestInvalidSettingsRejected(t *testing.T) {
	s := New(nil, synthetic.NewSeeded(1), quickOptions(), nil, zerolog.Nop())

	settings := model.DefaultSettings()
	settings.Timeframes = []string{"3d"}

	_, err := s.Start(context.Background(), settings, []string{"BTC"})
	assert.ErrorIs(t, err, model.ErrInvalidSettings)
	assert.False(t, s.Busy())
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestEmptyUniverseCompletes(t *testing.T) {
	calls := 0
	opts := quickOptions()
	opts.ForceSynthetic = true
	opts.OnBatch = func(Snapshot) { calls++ }
	s := New(nil, synthetic.NewSeeded(1), opts, nil, zerolog.Nop())

	final, err := s.Run(context.Background(), model.DefaultSettings(), nil)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, final.State)
	assert.Empty(t, final.Results)
	assert.Zero(t, calls)
}
