package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
)

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1m Timeframe = "1m"
	TF1h Timeframe = "1h"
	TF4h Timeframe = "4h"
	TF1d Timeframe = "1d"
)

// DefaultTimeframe returns the default timeframe. Signals are computed on hourly bars.
func DefaultTimeframe() Timeframe { return TF1h }

// CandleStore provides read-only access to stored candles.
type CandleStore interface {
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}
