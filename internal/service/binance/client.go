// Package binance reads hourly closes from the Binance klines endpoint.
package binance

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

// maxKlines is the largest page the klines endpoint serves.
const maxKlines = 1000

// KlinesService is the subset of binance.KlinesService used here.
type KlinesService interface {
	Symbol(symbol string) KlinesService
	Interval(interval string) KlinesService
	Limit(limit int) KlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// APIClient creates klines requests.
type APIClient interface {
	NewKlinesService() KlinesService
}

type clientWrapper struct {
	client *binance.Client
}

func (w *clientWrapper) NewKlinesService() KlinesService {
	return &klinesWrapper{svc: w.client.NewKlinesService()}
}

type klinesWrapper struct {
	svc *binance.KlinesService
}

func (k *klinesWrapper) Symbol(symbol string) KlinesService {
	k.svc.Symbol(symbol)
	return k
}

func (k *klinesWrapper) Interval(interval string) KlinesService {
	k.svc.Interval(interval)
	return k
}

func (k *klinesWrapper) Limit(limit int) KlinesService {
	k.svc.Limit(limit)
	return k
}

func (k *klinesWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return k.svc.Do(ctx)
}

// PriceSource maps coins to <COIN><QUOTE> pairs and returns kline closes.
type PriceSource struct {
	api      APIClient
	quote    string
	interval string
	l        *applogger.Logger
}

// Option configures PriceSource.
type Option func(*PriceSource)

// WithQuote sets the quote asset appended to coins (default USDT).
func WithQuote(q string) Option {
	return func(p *PriceSource) { p.quote = strings.ToUpper(q) }
}

// WithInterval sets the kline interval (default 1h).
func WithInterval(i string) Option {
	return func(p *PriceSource) { p.interval = i }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(p *PriceSource) { p.l = l }
}

// NewPriceSource builds a source on the public REST API.
func NewPriceSource(apiKey, secret, baseURL string, timeout time.Duration, opts ...Option) *PriceSource {
	c := binance.NewClient(apiKey, secret)
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	if timeout > 0 {
		c.HTTPClient = &http.Client{Timeout: timeout}
	}
	return NewPriceSourceWithAPI(&clientWrapper{client: c}, opts...)
}

// NewPriceSourceWithAPI builds a source on a custom API client.
func NewPriceSourceWithAPI(api APIClient, opts ...Option) *PriceSource {
	p := &PriceSource{api: api, quote: "USDT", interval: "1h", l: applogger.Nop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Pair returns the exchange symbol for coin.
func (p *PriceSource) Pair(coin string) string {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if p.quote == "" || strings.HasSuffix(coin, p.quote) {
		return coin
	}
	return coin + p.quote
}

// GetCloses returns the last n closes of coin in chronological order.
func (p *PriceSource) GetCloses(ctx context.Context, coin string, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("binance: invalid bar count %d", n)
	}
	if n > maxKlines {
		n = maxKlines
	}
	pair := p.Pair(coin)
	start := time.Now()

	klines, err := p.api.NewKlinesService().
		Symbol(pair).
		Interval(p.interval).
		Limit(n).
		Do(ctx)
	if err != nil {
		p.l.Warn("binance.klines request failed",
			applogger.String("pair", pair),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("binance klines %s: %w", pair, err)
	}

	closes, err := closesFromKlines(klines)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", pair, err)
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("binance klines %s: empty response", pair)
	}

	p.l.Debug("binance.klines ok",
		applogger.String("pair", pair),
		applogger.Int("bars", len(closes)),
		applogger.Duration("took_ms", time.Since(start)),
	)
	return closes, nil
}

func closesFromKlines(klines []*binance.Kline) ([]float64, error) {
	sorted := make([]*binance.Kline, 0, len(klines))
	for _, k := range klines {
		if k != nil {
			sorted = append(sorted, k)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OpenTime < sorted[j].OpenTime })

	out := make([]float64, 0, len(sorted))
	for _, k := range sorted {
		d, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, fmt.Errorf("parse close %q at %d: %w", k.Close, k.OpenTime, err)
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("non-positive close %s at %d", k.Close, k.OpenTime)
		}
		f, _ := d.Float64()
		out = append(out, f)
	}
	return out, nil
}

var _ repository.PriceSource = (*PriceSource)(nil)
