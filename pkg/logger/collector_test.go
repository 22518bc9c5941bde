package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topics  []string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func (p *capturePublisher) entries() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []AggregatedLogEntry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

func TestCollectorDeduplicatesAndFlushesOnClose(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Error("cycle.symbol retrieval failed", String("symbol", "BTC"), Error(errors.New("timeout")))
	}
	l.Error("cycle.symbol retrieval failed", String("symbol", "ETH"), Error(errors.New("timeout")))
	l.Warn("ignored without IncludeWarn")
	l.RemoveCollector()

	entries := pub.entries()
	require.Len(t, entries, 2)
	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Fields["symbol"].(string)] = e.Count
		assert.Equal(t, "error", e.Level)
	}
	assert.Equal(t, 3, counts["BTC"])
	assert.Equal(t, 1, counts["ETH"])
	assert.Equal(t, []string{"logs"}, pub.topics)
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Topic: "logs", Publisher: pub})
	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", nil, "x.go:2")
	c.Close()

	assert.Len(t, pub.entries(), 2)
}

func TestWithAddsFields(t *testing.T) {
	l, err := New(&Config{Level: "debug", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	child := l.With(String("component", "cycle"))
	assert.NotNil(t, child)
	child.Info("ok", Float64("score", 0.25), Duration("took", time.Second))
}
