package repository

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
)

func testBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func TestCandleQueryHourly(t *testing.T) {
	s := &CHCandleSource{database: "coinpulse", sq: testBuilder()}
	q, err := s.candleQuery(domrepo.TF1h)
	require.NoError(t, err)
	stmt, args, err := q.Where(squirrel.Eq{"symbol": "BTC"}).OrderBy("b DESC").Limit(200).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT bucket AS b, symbol, open, high, low, close, vol FROM coinpulse.candles_1h WHERE symbol = ? ORDER BY b DESC LIMIT 200", stmt)
	assert.Equal(t, []interface{}{"BTC"}, args)
}

func TestCandleQueryRollsUp(t *testing.T) {
	s := &CHCandleSource{database: "coinpulse", sq: testBuilder()}
	q, err := s.candleQuery(domrepo.TF1d)
	require.NoError(t, err)
	stmt, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, stmt, "toStartOfInterval(bucket, INTERVAL 1 DAY) AS b")
	assert.Contains(t, stmt, "GROUP BY b, symbol")

	_, err = s.candleQuery(domrepo.TF1m)
	assert.Error(t, err)
}

func TestSnapshotInsertStatements(t *testing.T) {
	s := &CHSnapshotStore{database: "coinpulse", sq: testBuilder()}
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := &models.Snapshot{
		CycleID:   "c-1",
		Timestamp: ts,
		Signals: []models.SymbolSignal{
			{Symbol: "BTC", Weight: 1.5, Available: true, Result: models.SignalResult{State: models.StateUp, Score: 0.9}, External: &models.ExternalScore{Score: 1.1}},
			{Symbol: "ETH", Weight: 1},
		},
		Aggregate: models.AggregateResult{Classification: models.ClassBull, Score: 0.9, Contributors: 1},
		Duration:  1500 * time.Millisecond,
	}

	agg, sym, err := s.insertStatements(snap)
	require.NoError(t, err)

	stmt, args, err := agg.ToSql()
	require.NoError(t, err)
	assert.Contains(t, stmt, "INSERT INTO coinpulse.signal_aggregates")
	assert.Equal(t, uint32(1500), args[6])

	stmt, args, err = sym.ToSql()
	require.NoError(t, err)
	assert.Contains(t, stmt, "INSERT INTO coinpulse.signal_symbols")
	assert.Len(t, args, 22)
	assert.Equal(t, uint8(1), args[4])
	assert.Equal(t, 1.1, *(args[8].(*float64)))
	assert.Nil(t, args[19])

	_, _, err = s.insertStatements(&models.Snapshot{})
	assert.Error(t, err)
}

func TestAggregatesQuery(t *testing.T) {
	s := &CHSnapshotStore{database: "coinpulse", sq: testBuilder()}
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	stmt, args, err := s.aggregatesQuery(from, time.Time{}, 50).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT cycle_id, ts, classification, score, contributors FROM coinpulse.signal_aggregates WHERE ts >= ? ORDER BY ts DESC LIMIT 50", stmt)
	assert.Equal(t, []interface{}{from}, args)
}
