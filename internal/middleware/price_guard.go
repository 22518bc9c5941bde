package middleware

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/services/features"
)

type cachedSeries struct {
	closes []float64
	n      int
	at     time.Time
}

// PriceGuard sits between the signal cycle and the upstream price source.
// It validates series, throttles repeated requests for the same symbol and
// serves the last good series while upstream is failing.
type PriceGuard struct {
	next        domrepo.PriceSource
	metrics     domrepo.Metrics
	minInterval time.Duration
	maxStale    time.Duration
	now         func() time.Time

	mu   sync.Mutex
	last map[string]cachedSeries
}

type GuardOption func(*PriceGuard)

// WithMinInterval sets how long a fetched series is reused for the same symbol.
func WithMinInterval(d time.Duration) GuardOption {
	return func(g *PriceGuard) {
		if d >= 0 {
			g.minInterval = d
		}
	}
}

// WithMaxStale sets how old a fallback series may be when upstream fails.
func WithMaxStale(d time.Duration) GuardOption {
	return func(g *PriceGuard) {
		if d >= 0 {
			g.maxStale = d
		}
	}
}

func withClock(now func() time.Time) GuardOption {
	return func(g *PriceGuard) { g.now = now }
}

// NewPriceGuard wraps next.
func NewPriceGuard(next domrepo.PriceSource, metrics domrepo.Metrics, opts ...GuardOption) *PriceGuard {
	g := &PriceGuard{
		next:        next,
		metrics:     metrics,
		minInterval: 30 * time.Second,
		maxStale:    10 * time.Minute,
		now:         time.Now,
		last:        make(map[string]cachedSeries),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetCloses implements domrepo.PriceSource.
func (g *PriceGuard) GetCloses(ctx context.Context, symbol string, n int) ([]float64, error) {
	if symbol == "" {
		g.metrics.RecordError("guard_validate")
		return nil, fmt.Errorf("symbol empty")
	}
	if n <= 0 {
		g.metrics.RecordError("guard_validate")
		return nil, fmt.Errorf("bar count must be positive, got %d", n)
	}

	now := g.now()
	if cached, ok := g.fresh(symbol, n, now); ok {
		g.metrics.RecordLatency("guard_throttled", 0)
		return cached, nil
	}

	closes, err := g.next.GetCloses(ctx, symbol, n)
	if err == nil && !features.IsValidSeries(closes) {
		g.metrics.RecordError("guard_invalid_series")
		err = fmt.Errorf("%s: upstream returned an invalid series", symbol)
	}
	if err != nil {
		if stale, ok := g.stale(symbol, n, now); ok {
			g.metrics.RecordError("guard_stale_served")
			return stale, nil
		}
		return nil, err
	}

	g.mu.Lock()
	g.last[symbol] = cachedSeries{closes: slices.Clone(closes), n: n, at: now}
	g.mu.Unlock()
	g.metrics.RecordLatency("guard_fetch", g.now().Sub(now).Seconds())
	return closes, nil
}

// fresh returns a series fetched within minInterval that covers n bars.
func (g *PriceGuard) fresh(symbol string, n int, now time.Time) ([]float64, bool) {
	if g.minInterval <= 0 {
		return nil, false
	}
	return g.lookup(symbol, n, now, g.minInterval)
}

func (g *PriceGuard) stale(symbol string, n int, now time.Time) ([]float64, bool) {
	if g.maxStale <= 0 {
		return nil, false
	}
	return g.lookup(symbol, n, now, g.maxStale)
}

func (g *PriceGuard) lookup(symbol string, n int, now time.Time, maxAge time.Duration) ([]float64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.last[symbol]
	if !ok || c.n < n || now.Sub(c.at) > maxAge {
		return nil, false
	}
	out := c.closes
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return slices.Clone(out), true
}

var _ domrepo.PriceSource = (*PriceGuard)(nil)
