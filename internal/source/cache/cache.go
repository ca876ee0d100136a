// Package cache wraps a source with a Redis read-through cache for candle series.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/Alias1177/TrendScanner/internal/metrics"
	"github.com/Alias1177/TrendScanner/internal/model"
	"github.com/Alias1177/TrendScanner/internal/source"
)

const keyPrefix = "trendscanner:candles"

// Source caches Candles of the wrapped source. Tickers are never cached.
type Source struct {
	next    source.Source
	rdb     redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New wraps next. m may be nil.
func New(next source.Source, rdb redis.Cmdable, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Source {
	return &Source{
		next:    next,
		rdb:     rdb,
		ttl:     ttl,
		metrics: m,
		logger:  logger.With().Str("component", "candle_cache").Logger(),
	}
}

// Key returns the cache key of one candle request
func Key(base, quote, interval string, limit int) string {
	return fmt.Sprintf("%s:%s%s:%s:%d", keyPrefix, base, quote, interval, limit)
}

// Name reports the wrapped source name
func (s *Source) Name() string { return s.next.Name() }

// Ping delegates to the wrapped source when it supports pinging
func (s *Source) Ping(ctx context.Context) error {
	if p, ok := s.next.(source.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Candles serves from Redis when possible and fills the cache on miss
func (s *Source) Candles(ctx context.Context, base, quote, interval string, limit int) ([]model.Candle, error) {
	key := Key(base, quote, interval, limit)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var candles []model.Candle
		jsonErr := json.Unmarshal(raw, &candles)
		if jsonErr == nil {
			s.metrics.CacheResult("hit")
			return candles, nil
		}
		s.logger.Warn().Err(jsonErr).Str("key", key).Msg("Discarding corrupt cache entry")
		s.metrics.CacheResult("miss")
	case errors.Is(err, redis.Nil):
		s.metrics.CacheResult("miss")
	default:
		s.metrics.CacheResult("error")
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}

	candles, err := s.next.Candles(ctx, base, quote, interval, limit)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(candles)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Encoding candles for cache failed")
		return candles, nil
	}
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}

	return candles, nil
}

// Ticker passes straight through
func (s *Source) Ticker(ctx context.Context, base, quote string) (model.Ticker, error) {
	return s.next.Ticker(ctx, base, quote)
}
