package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "CoinPulse/pkg/logger"
)

func TestBackoffWithJitterStaysInRange(t *testing.T) {
	for attempt := 1; attempt <= 8; attempt++ {
		d := backoffWithJitter(100*time.Millisecond, time.Second, attempt)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, time.Second)
	}
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Compression(0), parseCompression("none"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	b, _ = encodeValue("raw")
	assert.Equal(t, "raw", string(b))

	_, err = encodeValue(func() {})
	assert.Error(t, err)
}

func TestHookChainThreadsContextAndStopsOnError(t *testing.T) {
	var after []string
	first := HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			return WithTraceID(ctx, "t-1"), km, data, nil
		},
		After: func(context.Context, string, kafka.Message, []byte, error) { after = append(after, "first") },
	}
	second := HookFuncs{
		After: func(context.Context, string, kafka.Message, []byte, error) { after = append(after, "second") },
	}
	chain := Chain(first, nil, second)

	ctx, _, _, err := chain.BeforeHandle(context.Background(), "topic", kafka.Message{}, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "t-1", ctx.Value(CtxTraceID))

	chain.AfterHandle(ctx, "topic", kafka.Message{}, nil, nil)
	assert.Equal(t, []string{"second", "first"}, after)

	var seen error
	failing := HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			panic("boom")
		},
		Err: func(_ context.Context, _ string, _ kafka.Message, _ []byte, err error) { seen = err },
	}
	_, _, _, err = Chain(failing).BeforeHandle(context.Background(), "topic", kafka.Message{}, nil)
	var hookErr *HookError
	require.True(t, errors.As(err, &hookErr))
	assert.Equal(t, "ERR_PANIC", hookErr.Code)
	assert.Equal(t, err, seen)
}

func TestLoggingHookRejectsEmptyPayload(t *testing.T) {
	h := LoggingHook(applogger.Nop())
	_, _, _, err := h.BeforeHandle(context.Background(), "topic", kafka.Message{}, nil)
	assert.Error(t, err)

	km := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("c-9")}}}
	ctx, _, _, err := h.BeforeHandle(context.Background(), "topic", km, []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "c-9", ctx.Value(CtxTraceID))
	_, ok := ctx.Value(CtxStartTime).(time.Time)
	assert.True(t, ok)
}

func TestConstructorsRequireBrokers(t *testing.T) {
	_, err := NewConsumer(ConsumerConfig{GroupID: "g"})
	assert.Error(t, err)
	_, err = NewConsumer(ConsumerConfig{Brokers: []string{"localhost:9092"}})
	assert.ErrorContains(t, err, "group id")
	_, err = NewProducer(ProducerConfig{})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	pc, err := ProducerConfig{Brokers: []string{"b:9092"}}.withDefaults()
	require.NoError(t, err)
	assert.Equal(t, -1, pc.RequiredAcks)
	assert.Equal(t, "snappy", pc.Compression)
	assert.Equal(t, 3, pc.MaxAttempts)

	cc, err := ConsumerConfig{Brokers: []string{"b:9092"}, GroupID: "g", BackoffMin: 3 * time.Second}.withDefaults()
	require.NoError(t, err)
	assert.Equal(t, 1, cc.Workers)
	assert.Equal(t, 3*time.Second, cc.BackoffMax)
	assert.NotNil(t, cc.Logger)
}

func TestStartWithoutHandlersFails(t *testing.T) {
	c, err := NewConsumer(ConsumerConfig{Brokers: []string{"localhost:9092"}, GroupID: "g"})
	require.NoError(t, err)
	assert.Error(t, c.Start(context.Background()))
	assert.NoError(t, c.Stop(context.Background()))
}

func TestMetricsHookChainedWithLogging(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := Chain(LoggingHook(applogger.Nop()), MetricsHook(reg))

	km := kafka.Message{Time: time.Now().Add(-time.Second)}
	ctx, km, data, err := h.BeforeHandle(context.Background(), "snapshots", km, []byte("{}"))
	require.NoError(t, err)
	h.AfterHandle(ctx, "snapshots", km, data, nil)
	h.AfterHandle(ctx, "snapshots", km, data, errors.New("store down"))

	n, err := testutil.GatherAndCount(reg, "coinpulse_kafka_consumer_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = testutil.GatherAndCount(reg, "coinpulse_kafka_consumer_delivery_delay_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// rejected by the logging hook before the metrics hook sees it
	_, _, _, err = h.BeforeHandle(context.Background(), "snapshots", kafka.Message{}, nil)
	assert.Error(t, err)
}
