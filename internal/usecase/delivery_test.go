package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"CoinPulse/internal/domain/models"
	"CoinPulse/mocks"
)

func quietMetrics(ctrl *gomock.Controller) *mocks.MockMetrics {
	m := mocks.NewMockMetrics(ctrl)
	m.EXPECT().RecordError(gomock.Any()).AnyTimes()
	m.EXPECT().RecordLatency(gomock.Any(), gomock.Any()).AnyTimes()
	return m
}

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		CycleID:   "c-1",
		Timestamp: time.Now().UTC(),
		Aggregate: models.AggregateResult{Classification: models.ClassBull, Score: 0.7, Contributors: 2},
	}
}

func TestSnapshotRouterBackends(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockSnapshotPublisher(ctrl)
	store := mocks.NewMockSnapshotStore(ctrl)
	metrics := quietMetrics(ctrl)
	ctx := context.Background()
	snap := sampleSnapshot()

	pub.EXPECT().Publish(ctx, snap).Return(nil)
	require.NoError(t, NewSnapshotRouter(pub, store, metrics, SinkKafka).Deliver(ctx, snap))

	store.EXPECT().Store(ctx, snap).Return(errors.New("ch down"))
	assert.Error(t, NewSnapshotRouter(pub, store, metrics, SinkClickHouse).Deliver(ctx, snap))

	assert.NoError(t, NewSnapshotRouter(nil, nil, metrics, SinkNone).Deliver(ctx, snap))
	assert.Error(t, NewSnapshotRouter(nil, nil, metrics, "s3").Deliver(ctx, snap))
	assert.Error(t, NewSnapshotRouter(nil, nil, metrics, SinkKafka).Deliver(ctx, snap))
	assert.Error(t, NewSnapshotRouter(pub, store, metrics, SinkKafka).Deliver(ctx, nil))
}

func TestSnapshotArchiverStoresDecodedSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSnapshotStore(ctrl)
	h := NewSnapshotArchiver("coinpulse.snapshots", store, quietMetrics(ctrl))
	assert.Equal(t, "coinpulse.snapshots", h.Topic())

	snap := sampleSnapshot()
	b, err := json.Marshal(snap)
	require.NoError(t, err)

	store.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *models.Snapshot) error {
		assert.Equal(t, "c-1", s.CycleID)
		assert.Equal(t, models.ClassBull, s.Aggregate.Classification)
		return nil
	})
	require.NoError(t, h.Handle(context.Background(), b))

	assert.Error(t, h.Handle(context.Background(), []byte("{not json")))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"signals":[]}`)))
}

type triggerCounter struct{ n int }

func (t *triggerCounter) Trigger() { t.n++ }

type fakeQueue struct {
	msgType string
	payload interface{}
	err     error
}

func (q *fakeQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	q.msgType, q.payload = msgType, payload
	return q.err
}

func TestRefresherWithoutQueueTriggersDirectly(t *testing.T) {
	tr := &triggerCounter{}
	require.NoError(t, NewRefresher(nil, tr, nil).Request(context.Background(), "manual", nil))
	assert.Equal(t, 1, tr.n)
}

func TestRefresherEnqueues(t *testing.T) {
	tr := &triggerCounter{}
	q := &fakeQueue{}
	r := NewRefresher(q, tr, nil)
	r.OnRegistryChange(context.Background(), []string{"BTC"})
	assert.Equal(t, RefreshJobType, q.msgType)
	assert.Equal(t, 0, tr.n)

	q.err = errors.New("redis down")
	assert.Error(t, r.Request(context.Background(), "manual", nil))
	assert.Equal(t, 1, tr.n)
}

func TestRefreshJobHandlesQueuedPayload(t *testing.T) {
	tr := &triggerCounter{}
	job := NewRefreshJob(tr, nil)
	assert.Equal(t, RefreshJobType, job.Type())

	raw, _ := json.Marshal(RefreshRequest{Reason: "symbols changed", Symbols: []string{"BTC"}})
	require.NoError(t, job.Handle(context.Background(), json.RawMessage(raw)))
	require.NoError(t, job.Handle(context.Background(), RefreshRequest{Reason: "direct"}))
	assert.Equal(t, 2, tr.n)

	assert.Error(t, job.Handle(context.Background(), 42))
}

func TestHistoryUseCase(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSnapshotStore(ctrl)
	ctx := context.Background()

	_, err := NewHistoryUseCase(nil).GetHistory(ctx, GetHistoryParams{})
	assert.ErrorIs(t, err, ErrHistoryDisabled)

	uc := NewHistoryUseCase(store)
	to := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	from := to.Add(-time.Hour)

	_, err = uc.GetHistory(ctx, GetHistoryParams{From: to, To: from})
	assert.Error(t, err)

	store.EXPECT().QueryAggregates(ctx, from, to, 5000).Return(nil, nil)
	res, err := uc.GetHistory(ctx, GetHistoryParams{From: from, To: to, Limit: 1_000_000})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Points)

	store.EXPECT().QueryAggregates(ctx, from, to, 100).Return([]models.AggregatePoint{{CycleID: "a"}}, nil)
	res, err = uc.GetHistory(ctx, GetHistoryParams{From: from, To: to})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
}
