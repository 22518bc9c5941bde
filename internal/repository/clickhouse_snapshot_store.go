package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	pkgch "CoinPulse/pkg/clickhouse"
)

// CHSnapshotStore persists cycle snapshots in ClickHouse: one aggregate row
// per cycle plus one row per symbol.
type CHSnapshotStore struct {
	ch       *pkgch.Client
	db       *sql.DB
	database string
	sq       squirrel.StatementBuilderType
}

func NewCHSnapshotStore(ch *pkgch.Client, database string) *CHSnapshotStore {
	return &CHSnapshotStore{
		ch:       ch,
		db:       ch.DB(),
		database: database,
		sq:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (s *CHSnapshotStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, pkgch.SchemaStatements(s.database))
}

func (s *CHSnapshotStore) Store(ctx context.Context, snap *models.Snapshot) error {
	agg, sym, err := s.insertStatements(snap)
	if err != nil {
		return err
	}
	if err := s.exec(ctx, agg); err != nil {
		return fmt.Errorf("insert aggregate: %w", err)
	}
	if len(snap.Signals) == 0 {
		return nil
	}
	if err := s.exec(ctx, sym); err != nil {
		return fmt.Errorf("insert symbols: %w", err)
	}
	return nil
}

func (s *CHSnapshotStore) insertStatements(snap *models.Snapshot) (squirrel.InsertBuilder, squirrel.InsertBuilder, error) {
	if snap == nil || snap.CycleID == "" {
		return squirrel.InsertBuilder{}, squirrel.InsertBuilder{}, fmt.Errorf("snapshot without cycle id")
	}
	agg := s.sq.Insert(s.table(pkgch.TableAggregates)).
		Columns("cycle_id", "ts", "classification", "score", "contributors", "explanation", "duration_ms").
		Values(
			snap.CycleID,
			snap.Timestamp,
			string(snap.Aggregate.Classification),
			snap.Aggregate.Score,
			uint16(snap.Aggregate.Contributors),
			snap.Aggregate.Explanation,
			uint32(snap.Duration.Milliseconds()),
		)

	sym := s.sq.Insert(s.table(pkgch.TableSymbols)).
		Columns("cycle_id", "ts", "symbol", "weight", "available", "state", "score", "local_score", "external_score", "explanation", "bars")
	for _, sig := range snap.Signals {
		var ext *float64
		if sig.External != nil {
			v := sig.External.Score
			ext = &v
		}
		var avail uint8
		if sig.Available {
			avail = 1
		}
		sym = sym.Values(
			snap.CycleID,
			snap.Timestamp,
			sig.Symbol,
			sig.Weight,
			avail,
			string(sig.Result.State),
			sig.Result.Score,
			sig.Local.Score,
			ext,
			sig.Result.Explanation,
			uint16(sig.Bars),
		)
	}
	return agg, sym, nil
}

func (s *CHSnapshotStore) exec(ctx context.Context, q squirrel.InsertBuilder) error {
	stmt, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, stmt, args...)
	return err
}

func (s *CHSnapshotStore) QueryAggregates(ctx context.Context, from, to time.Time, limit int) ([]models.AggregatePoint, error) {
	stmt, args, err := s.aggregatesQuery(from, to, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build aggregates query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer rows.Close()

	out := make([]models.AggregatePoint, 0, limit)
	for rows.Next() {
		var (
			p     models.AggregatePoint
			class string
			n     uint16
		)
		if err := rows.Scan(&p.CycleID, &p.Timestamp, &class, &p.Score, &n); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		p.Classification = models.Classification(class)
		p.Contributors = int(n)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *CHSnapshotStore) aggregatesQuery(from, to time.Time, limit int) squirrel.SelectBuilder {
	q := s.sq.Select("cycle_id", "ts", "classification", "score", "contributors").
		From(s.table(pkgch.TableAggregates))
	if !from.IsZero() {
		q = q.Where(squirrel.GtOrEq{"ts": from})
	}
	if !to.IsZero() {
		q = q.Where(squirrel.LtOrEq{"ts": to})
	}
	q = q.OrderBy("ts DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

func (s *CHSnapshotStore) table(name string) string {
	return fmt.Sprintf("%s.%s", s.database, name)
}

func (s *CHSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to the ClickHouse client.
func (s *CHSnapshotStore) Close() error {
	return nil
}

var _ repository.SnapshotStore = (*CHSnapshotStore)(nil)
