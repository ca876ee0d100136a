package main

import (
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/TrendScanner/internal/api/binance"
	"github.com/Alias1177/TrendScanner/internal/config"
	"github.com/Alias1177/TrendScanner/internal/metrics"
	"github.com/Alias1177/TrendScanner/internal/model"
	"github.com/Alias1177/TrendScanner/internal/notify/telegram"
	"github.com/Alias1177/TrendScanner/internal/scan"
	"github.com/Alias1177/TrendScanner/internal/source"
	"github.com/Alias1177/TrendScanner/internal/source/cache"
	"github.com/Alias1177/TrendScanner/internal/source/synthetic"
)

// app holds the wired components shared by the commands
type app struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	live     source.Source
	fallback source.Source
	notifier *telegram.Notifier
	redis    *redis.Client
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	a.live = binance.NewClient(binance.ClientOptions{
		BaseURL:        cfg.BinanceBaseURL,
		RequestTimeout: cfg.RequestTimeout,
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     cfg.MaxRetries,
	})

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		a.live = cache.New(a.live, a.redis, cfg.CacheTTL, a.metrics, log.Logger)
		log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("Candle cache enabled")
	}

	a.fallback = synthetic.NewSeeded(cfg.SyntheticSeed)

	if cfg.TelegramEnabled() {
		n, err := telegram.NewFromToken(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.NotifyTopN, log.Logger)
		if err != nil {
			return nil, err
		}
		a.notifier = n
	}

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Closing redis client")
		}
	}
}

func (a *app) scanner(cfg *config.Config, opts scan.Options) *scan.Scanner {
	opts.BatchSize = cfg.BatchSize
	opts.BatchPause = cfg.BatchPause
	opts.SyntheticPause = cfg.SyntheticPause
	opts.ForceSynthetic = opts.ForceSynthetic || cfg.ForceSynthetic

	if a.notifier != nil {
		next := opts.OnFinish
		opts.OnFinish = func(s scan.Snapshot) {
			if next != nil {
				next(s)
			}
			a.notifier.Notify(s)
		}
	}

	return scan.New(a.live, a.fallback, opts, a.metrics, log.Logger)
}

// resolveSettings layers the settings file and flag overrides over the defaults
func resolveSettings(cfg *config.Config, timeframes, sensitivity, assets string) (model.Settings, []string, error) {
	settings := model.DefaultSettings()
	universe := append([]string(nil), model.DefaultUniverse...)

	if cfg.SettingsFile != "" {
		fc, err := config.LoadSettingsFile(cfg.SettingsFile, settings)
		if err != nil {
			return model.Settings{}, nil, err
		}
		settings, universe = fc.Settings, fc.Universe
	}

	if timeframes != "" {
		settings.Timeframes = splitList(timeframes)
	}
	if sensitivity != "" {
		settings.TrendSensitivity = model.Sensitivity(strings.ToLower(sensitivity))
	}
	if assets != "" {
		universe = model.NormalizeSymbols(splitList(assets))
	}

	if err := settings.Validate(); err != nil {
		return model.Settings{}, nil, err
	}
	if len(universe) == 0 {
		return model.Settings{}, nil, fmt.Errorf("empty asset universe")
	}
	return settings, universe, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
