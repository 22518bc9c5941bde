// Package registry keeps the list of tracked coins.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode"

	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/services/signal"
	"CoinPulse/pkg/cache"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/util"
)

var (
	ErrEmptySymbol     = errors.New("symbol is empty")
	ErrInvalidSymbol   = errors.New("symbol must contain only letters and digits")
	ErrAlreadyListed   = errors.New("already in the list")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// DefaultSymbols is the list used until a user edits it.
var DefaultSymbols = []string{"BTC", "ETH", "GALA", "XRP", "ADA", "DOGE", "SOL"}

// ChangeFunc is called after the list was modified.
type ChangeFunc func(ctx context.Context, symbols []string)

// Registry stores the ordered symbol list under one cache key.
type Registry struct {
	store    cache.Service
	key      string
	defaults []string
	weights  signal.Weights
	onChange ChangeFunc
	l        *applogger.Logger

	mu sync.Mutex
}

// Option configures Registry.
type Option func(*Registry)

// WithDefaults replaces the built-in default list.
func WithDefaults(symbols []string) Option {
	return func(r *Registry) {
		if len(symbols) > 0 {
			r.defaults = normalizeAll(symbols)
		}
	}
}

// WithWeights sets the aggregation weights.
func WithWeights(w signal.Weights) Option {
	return func(r *Registry) { r.weights = w }
}

// WithKey sets the cache key the list is stored under.
func WithKey(key string) Option {
	return func(r *Registry) {
		if key != "" {
			r.key = key
		}
	}
}

// WithOnChange registers a hook run after Add and Remove.
func WithOnChange(fn ChangeFunc) Option {
	return func(r *Registry) { r.onChange = fn }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(r *Registry) { r.l = l }
}

func New(store cache.Service, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		key:      "symbols",
		defaults: slices.Clone(DefaultSymbols),
		weights:  signal.DefaultWeights(),
		l:        applogger.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// SetOnChange replaces the change hook.
func (r *Registry) SetOnChange(fn ChangeFunc) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// List returns the tracked symbols. A missing or unreadable list is reset to
// the defaults.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Add appends symbol after trimming and uppercasing it.
func (r *Registry) Add(ctx context.Context, symbol string) ([]string, error) {
	sym := util.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, ErrEmptySymbol
	}
	if !isAlnum(sym) {
		return nil, fmt.Errorf("%q: %w", sym, ErrInvalidSymbol)
	}

	r.mu.Lock()
	list, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if slices.Contains(list, sym) {
		r.mu.Unlock()
		return nil, fmt.Errorf("%s %w", sym, ErrAlreadyListed)
	}
	list = append(list, sym)
	if err := r.save(ctx, list); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	hook := r.onChange
	r.mu.Unlock()

	r.l.Info("registry.symbol added", applogger.String("symbol", sym), applogger.Int("count", len(list)))
	if hook != nil {
		hook(ctx, slices.Clone(list))
	}
	return list, nil
}

// Remove deletes the symbol at index.
func (r *Registry) Remove(ctx context.Context, index int) ([]string, error) {
	r.mu.Lock()
	list, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if index < 0 || index >= len(list) {
		r.mu.Unlock()
		return nil, fmt.Errorf("%d of %d: %w", index, len(list), ErrIndexOutOfRange)
	}
	removed := list[index]
	list = slices.Delete(list, index, index+1)
	if err := r.save(ctx, list); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	hook := r.onChange
	r.mu.Unlock()

	r.l.Info("registry.symbol removed", applogger.String("symbol", removed), applogger.Int("count", len(list)))
	if hook != nil {
		hook(ctx, slices.Clone(list))
	}
	return list, nil
}

// Weight returns the aggregation weight of symbol.
func (r *Registry) Weight(symbol string) float64 {
	return r.weights.For(symbol)
}

// Weights returns the weight table.
func (r *Registry) Weights() signal.Weights {
	return r.weights
}

func (r *Registry) load(ctx context.Context) ([]string, error) {
	var list []string
	err := r.store.Get(ctx, r.key, &list)
	switch {
	case err == nil:
		return normalizeAll(list), nil
	case errors.Is(err, cache.ErrCacheMiss):
	default:
		if ctx.Err() != nil {
			return nil, fmt.Errorf("load symbols: %w", err)
		}
		r.l.Warn("registry.load failed, resetting to defaults", applogger.Error(err))
	}

	list = slices.Clone(r.defaults)
	if err := r.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Registry) save(ctx context.Context, list []string) error {
	if err := r.store.Set(ctx, r.key, list, 0); err != nil {
		return fmt.Errorf("save symbols: %w", err)
	}
	return nil
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = util.NormalizeSymbol(s); s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var _ repository.SymbolRegistry = (*Registry)(nil)
