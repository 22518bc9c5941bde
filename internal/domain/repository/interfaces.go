package repository

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
)

// PriceSource returns the latest n closes of a symbol in chronological order.
type PriceSource interface {
	GetCloses(ctx context.Context, symbol string, n int) ([]float64, error)
}

// SymbolRegistry holds the tracked symbols and their aggregation weights.
type SymbolRegistry interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, symbol string) ([]string, error)
	Remove(ctx context.Context, index int) ([]string, error)
	Weight(symbol string) float64
}

// SnapshotPublisher sends cycle snapshots to a message bus.
type SnapshotPublisher interface {
	Publish(ctx context.Context, s *models.Snapshot) error
	Close() error
}

// SnapshotStore persists snapshots and serves aggregate history.
type SnapshotStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, s *models.Snapshot) error
	QueryAggregates(ctx context.Context, from, to time.Time, limit int) ([]models.AggregatePoint, error)
	Health(ctx context.Context) error
	Close() error
}

// SnapshotSink receives every finished cycle snapshot.
type SnapshotSink interface {
	Deliver(ctx context.Context, s *models.Snapshot) error
}

type Metrics interface {
	RecordCycle(status string, seconds float64)
	RecordError(kind string)
	RecordScore(symbol string, score float64)
	RecordAggregate(score float64)
	RecordLatency(op string, seconds float64)
}
