package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/services/features"
	pkgch "CoinPulse/pkg/clickhouse"
	applogger "CoinPulse/pkg/logger"
)

// CHCandleSource reads hourly candles from ClickHouse. It serves as a
// PriceSource when prices are ingested by another process.
type CHCandleSource struct {
	db       *sql.DB
	database string
	sq       squirrel.StatementBuilderType
	l        *applogger.Logger
}

func NewCHCandleSource(ch *pkgch.Client, database string, l *applogger.Logger) *CHCandleSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHCandleSource{
		db:       ch.DB(),
		database: database,
		sq:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		l:        l,
	}
}

// GetCloses returns the latest n hourly closes, oldest first.
func (s *CHCandleSource) GetCloses(ctx context.Context, symbol string, n int) ([]float64, error) {
	cs, err := s.GetLatestNCandles(ctx, symbol, n, domrepo.DefaultTimeframe())
	if err != nil {
		return nil, err
	}
	closes := features.Closes(cs)
	if !features.IsValidSeries(closes) {
		return nil, fmt.Errorf("%s: stored closes contain non-positive values", symbol)
	}
	return closes, nil
}

func (s *CHCandleSource) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	if n <= 0 {
		return []models.Candle{}, nil
	}
	q, err := s.candleQuery(tf)
	if err != nil {
		return nil, err
	}
	q = q.Where(squirrel.Eq{"symbol": symbol}).OrderBy("b DESC").Limit(uint64(n))
	out, err := s.query(ctx, "latest_candles", symbol, tf, q)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// candleQuery selects from candles_1h directly, rolling hourly bars up for
// coarser timeframes.
func (s *CHCandleSource) candleQuery(tf domrepo.Timeframe) (squirrel.SelectBuilder, error) {
	if tf == "" {
		tf = domrepo.DefaultTimeframe()
	}
	table := fmt.Sprintf("%s.%s", s.database, pkgch.TableCandles1h)
	switch tf {
	case domrepo.TF1h:
		return s.sq.Select("bucket AS b", "symbol", "open", "high", "low", "close", "vol").From(table), nil
	case domrepo.TF4h, domrepo.TF1d:
		interval := "INTERVAL 4 HOUR"
		if tf == domrepo.TF1d {
			interval = "INTERVAL 1 DAY"
		}
		return s.sq.Select(
			fmt.Sprintf("toStartOfInterval(bucket, %s) AS b", interval),
			"symbol",
			"argMin(open, bucket) AS open",
			"max(high) AS high",
			"min(low) AS low",
			"argMax(close, bucket) AS close",
			"sum(vol) AS vol",
		).From(table).GroupBy("b", "symbol"), nil
	default:
		return squirrel.SelectBuilder{}, fmt.Errorf("unsupported timeframe: %s", tf)
	}
}

func (s *CHCandleSource) query(ctx context.Context, op, symbol string, tf domrepo.Timeframe, q squirrel.SelectBuilder) ([]models.Candle, error) {
	start := time.Now()
	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		s.l.Error("clickhouse "+op+" query error",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 256)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse "+op+" ok",
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("rows", len(out)),
		applogger.Duration("took", time.Since(start)),
	)
	return out, nil
}

var (
	_ domrepo.CandleStore = (*CHCandleSource)(nil)
	_ domrepo.PriceSource = (*CHCandleSource)(nil)
)
