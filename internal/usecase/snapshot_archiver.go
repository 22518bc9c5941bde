package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	pkgkafka "CoinPulse/pkg/kafka"
)

// SnapshotArchiver consumes published snapshots and writes them to storage.
type SnapshotArchiver struct {
	topic   string
	storage domrepo.SnapshotStore
	metrics domrepo.Metrics
}

func NewSnapshotArchiver(topic string, storage domrepo.SnapshotStore, metrics domrepo.Metrics) *SnapshotArchiver {
	return &SnapshotArchiver{topic: topic, storage: storage, metrics: metrics}
}

func (h *SnapshotArchiver) Topic() string { return h.topic }

func (h *SnapshotArchiver) Handle(ctx context.Context, b []byte) error {
	var s models.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if s.CycleID == "" || s.Timestamp.IsZero() {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("snapshot without cycle id or timestamp")
	}
	// publish to archive lag
	h.metrics.RecordLatency("archive_lag", time.Since(s.Timestamp).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &s)
	h.metrics.RecordLatency("ch_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*SnapshotArchiver)(nil)
