package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
)

const (
	SinkKafka      = "kafka"
	SinkClickHouse = "clickhouse"
	SinkNone       = "none"
)

// SnapshotRouter delivers snapshots to the configured backend.
type SnapshotRouter struct {
	pub     drepo.SnapshotPublisher
	store   drepo.SnapshotStore
	metrics drepo.Metrics
	backend string
}

// NewSnapshotRouter creates a router. pub and store may be nil when their
// backend is not selected.
func NewSnapshotRouter(
	pub drepo.SnapshotPublisher,
	store drepo.SnapshotStore,
	metrics drepo.Metrics,
	backend string,
) *SnapshotRouter {
	return &SnapshotRouter{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Deliver routes a single snapshot to the configured backend.
func (p *SnapshotRouter) Deliver(ctx context.Context, s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case SinkKafka:
		if p.pub == nil {
			return fmt.Errorf("kafka publisher not configured")
		}
		err = p.pub.Publish(ctx, s)
	case SinkClickHouse:
		if p.store == nil {
			return fmt.Errorf("clickhouse store not configured")
		}
		err = p.store.Store(ctx, s)
	case SinkNone, "":
		return nil
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("deliver")
		return fmt.Errorf("deliver snapshot: %w", err)
	}

	p.metrics.RecordLatency("deliver_"+p.backend, time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *SnapshotRouter) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}

var _ drepo.SnapshotSink = (*SnapshotRouter)(nil)
