package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/services/features"
	"CoinPulse/internal/services/signal"
	"CoinPulse/pkg/cache"
	applogger "CoinPulse/pkg/logger"
)

const (
	cycleLockKey = "cycle:lock"

	// MinVolCloses is the shortest series the volatility chart accepts.
	MinVolCloses = 50
)

var (
	ErrCycleInProgress  = errors.New("cycle already running")
	ErrInsufficientData = errors.New("insufficient data")
	ErrPriceUnavailable = errors.New("price data unavailable")
)

// Broadcaster pushes finished snapshots to live subscribers.
type Broadcaster interface {
	Broadcast(s *models.Snapshot)
}

// SignalCycle evaluates every registered symbol and aggregates the results.
type SignalCycle struct {
	prices   domrepo.PriceSource
	model    domsvc.ExternalModel
	registry domrepo.SymbolRegistry
	metrics  domrepo.Metrics
	lock     cache.Service
	sink     domrepo.SnapshotSink
	hub      Broadcaster
	l        *applogger.Logger

	bars          int
	symbolTimeout time.Duration
	lockTTL       time.Duration
	volWindow     int
	lambda        float64

	mu     sync.RWMutex
	latest *models.Snapshot
}

type CycleOption func(*SignalCycle)

// WithCycleLock guards Run with a distributed try-lock.
func WithCycleLock(c cache.Service, ttl time.Duration) CycleOption {
	return func(s *SignalCycle) {
		s.lock = c
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithSink(sink domrepo.SnapshotSink) CycleOption {
	return func(s *SignalCycle) { s.sink = sink }
}

func WithBroadcaster(b Broadcaster) CycleOption {
	return func(s *SignalCycle) { s.hub = b }
}

func WithCycleLogger(l *applogger.Logger) CycleOption {
	return func(s *SignalCycle) {
		if l != nil {
			s.l = l
		}
	}
}

// WithBars sets how many closes are requested per symbol.
func WithBars(n int) CycleOption {
	return func(s *SignalCycle) {
		if n >= signal.MinCloses {
			s.bars = n
		}
	}
}

func WithSymbolTimeout(d time.Duration) CycleOption {
	return func(s *SignalCycle) {
		if d > 0 {
			s.symbolTimeout = d
		}
	}
}

// WithVolatility sets the rolling window and EWMA decay of VolSeries.
func WithVolatility(window int, lambda float64) CycleOption {
	return func(s *SignalCycle) {
		if window >= 2 {
			s.volWindow = window
		}
		if lambda > 0 && lambda < 1 {
			s.lambda = lambda
		}
	}
}

// NewSignalCycle builds a cycle. model may be nil when no external model is configured.
func NewSignalCycle(prices domrepo.PriceSource, model domsvc.ExternalModel, registry domrepo.SymbolRegistry, metrics domrepo.Metrics, opts ...CycleOption) *SignalCycle {
	c := &SignalCycle{
		prices:        prices,
		model:         model,
		registry:      registry,
		metrics:       metrics,
		l:             applogger.Nop(),
		bars:          200,
		symbolTimeout: 10 * time.Second,
		lockTTL:       30 * time.Second,
		volWindow:     features.DefaultVolWindow,
		lambda:        features.DefaultEWMALambda,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Latest returns the last finished snapshot, or nil before the first cycle.
func (c *SignalCycle) Latest() *models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// Run performs one evaluation pass. It returns ErrCycleInProgress when
// another replica holds the cycle lock.
func (c *SignalCycle) Run(ctx context.Context) (*models.Snapshot, error) {
	if c.lock != nil {
		ok, err := c.lock.TryLock(ctx, cycleLockKey, c.lockTTL)
		if err != nil {
			c.l.Warn("cycle lock unavailable, running unlocked", applogger.Error(err))
		} else if !ok {
			c.metrics.RecordCycle("skipped", 0)
			return nil, ErrCycleInProgress
		} else {
			defer func() {
				if err := c.lock.Unlock(context.WithoutCancel(ctx), cycleLockKey); err != nil {
					c.l.Warn("cycle unlock failed", applogger.Error(err))
				}
			}()
		}
	}

	start := time.Now()
	symbols, err := c.registry.List(ctx)
	if err != nil {
		c.metrics.RecordCycle("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("list symbols: %w", err)
	}

	type item struct {
		idx int
		sig models.SymbolSignal
	}
	ch := make(chan item, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch <- item{i, c.evaluate(ctx, sym)}
		}()
	}
	go func() { wg.Wait(); close(ch) }()

	sigs := make([]models.SymbolSignal, len(symbols))
	for it := range ch {
		sigs[it.idx] = it.sig
	}

	weights := signal.Weights{BySymbol: make(map[string]float64, len(sigs)), Default: signal.DefaultWeight}
	for i := range sigs {
		sigs[i].Weight = c.registry.Weight(sigs[i].Symbol)
		weights.BySymbol[sigs[i].Symbol] = sigs[i].Weight
	}

	snap := &models.Snapshot{
		CycleID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Signals:   sigs,
		Aggregate: signal.Aggregate(signal.ScoresFromSignals(sigs), weights),
		Duration:  time.Since(start),
	}

	c.mu.Lock()
	c.latest = snap
	c.mu.Unlock()

	c.publish(ctx, snap)
	c.l.Info("cycle finished",
		applogger.String("cycle_id", snap.CycleID),
		applogger.Int("symbols", len(sigs)),
		applogger.Int("contributors", snap.Aggregate.Contributors),
		applogger.Float64("aggregate", snap.Aggregate.Score),
		applogger.Duration("took", snap.Duration),
	)
	return snap, nil
}

// LatestOrRun returns the cached snapshot, running a cycle when there is none yet.
func (c *SignalCycle) LatestOrRun(ctx context.Context) (*models.Snapshot, error) {
	if s := c.Latest(); s != nil {
		return s, nil
	}
	s, err := c.Run(ctx)
	if errors.Is(err, ErrCycleInProgress) {
		if s := c.Latest(); s != nil {
			return s, nil
		}
	}
	return s, err
}

// EvaluateOne scores a single symbol outside the cycle.
func (c *SignalCycle) EvaluateOne(ctx context.Context, symbol string, bars int) models.SymbolSignal {
	if bars < signal.MinCloses {
		bars = c.bars
	}
	sig := c.evaluateN(ctx, symbol, bars)
	sig.Weight = c.registry.Weight(symbol)
	return sig
}

// VolSeries builds the realized volatility chart of symbol in percent,
// together with its EWMA forecast.
func (c *SignalCycle) VolSeries(ctx context.Context, symbol string, bars int) (*models.VolatilitySeries, error) {
	if bars < MinVolCloses {
		bars = c.bars
	}
	start := time.Now()
	closes, err := c.prices.GetCloses(ctx, symbol, bars)
	c.metrics.RecordLatency("price", time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordError("price")
		return nil, fmt.Errorf("get closes %s: %w: %w", symbol, ErrPriceUnavailable, err)
	}
	if len(closes) < MinVolCloses {
		return nil, fmt.Errorf("%s has %d closes, need %d: %w", symbol, len(closes), MinVolCloses, ErrInsufficientData)
	}

	rets := features.ComputeLogReturns(closes)
	realized := features.ScaleSeries(features.RealizedVolatilitySeries(rets, c.volWindow, features.HoursPerYear), 100)
	out := &models.VolatilitySeries{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Window:    c.volWindow,
		Lambda:    c.lambda,
		Realized:  realized,
		Forecast:  features.EWMAForecast(realized, c.lambda),
	}
	if v, err := features.LatestForecast(realized, c.lambda).Take(); err == nil {
		out.Latest = &v
	}
	return out, nil
}

func (c *SignalCycle) evaluate(ctx context.Context, symbol string) models.SymbolSignal {
	return c.evaluateN(ctx, symbol, c.bars)
}

// evaluateN fetches closes and the external opinion concurrently, then scores.
func (c *SignalCycle) evaluateN(ctx context.Context, symbol string, bars int) models.SymbolSignal {
	ctx, cancel := context.WithTimeout(ctx, c.symbolTimeout)
	defer cancel()

	var (
		wg     sync.WaitGroup
		closes []float64
		priErr error
		ext    = optional.None[models.ExternalScore]()
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		closes, priErr = c.prices.GetCloses(ctx, symbol, bars)
		c.metrics.RecordLatency("price", time.Since(start).Seconds())
	}()
	if c.model != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			v, err := c.model.Predict(ctx, symbol)
			c.metrics.RecordLatency("model", time.Since(start).Seconds())
			if err != nil {
				c.metrics.RecordError("model")
				c.l.Debug("external model unavailable", applogger.String("symbol", symbol), applogger.Error(err))
				return
			}
			ext = v
		}()
	}
	wg.Wait()

	sig := models.SymbolSignal{Symbol: symbol}
	if priErr != nil {
		c.metrics.RecordError("price")
		c.l.Warn("price retrieval failed", applogger.String("symbol", symbol), applogger.Error(priErr))
		sig.Error = priErr.Error()
		sig.Result = models.SignalResult{State: models.StateNeutral, Explanation: "unavailable"}
		sig.Local = sig.Result
		return sig
	}

	local := signal.Score(closes)
	sig.Available = true
	sig.Bars = len(closes)
	sig.Local = local
	sig.Result = signal.Blend(local, ext)
	if signal.HasOpinion(ext) {
		e := ext.Unwrap()
		sig.External = &e
	}
	c.metrics.RecordScore(symbol, sig.Result.Score)
	return sig
}

func (c *SignalCycle) publish(ctx context.Context, snap *models.Snapshot) {
	c.metrics.RecordCycle("ok", snap.Duration.Seconds())
	c.metrics.RecordAggregate(snap.Aggregate.Score)
	if c.sink != nil {
		if err := c.sink.Deliver(ctx, snap); err != nil {
			c.metrics.RecordError("sink")
			c.l.Error("snapshot delivery failed", applogger.String("cycle_id", snap.CycleID), applogger.Error(err))
		}
	}
	if c.hub != nil {
		c.hub.Broadcast(snap)
	}
}
