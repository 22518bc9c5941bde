package kafka

import (
	"errors"
	"time"

	applogger "CoinPulse/pkg/logger"
)

// ProducerConfig configures the snapshot writer.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks int // -1 waits for all in-sync replicas
	Compression  string
	MaxAttempts  int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	BatchSize    int
	BatchBytes   int
	Linger       time.Duration
	Async        bool
	// HashByKey routes equal keys to the same partition.
	HashByKey bool
}

func (c ProducerConfig) withDefaults() (ProducerConfig, error) {
	if len(c.Brokers) == 0 {
		return c, errors.New("kafka producer: brokers are required")
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = -1
	}
	if c.Compression == "" {
		c.Compression = "snappy"
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BatchBytes <= 0 {
		c.BatchBytes = 1 << 20
	}
	if c.Linger <= 0 {
		c.Linger = 10 * time.Millisecond
	}
	return c, nil
}

// ConsumerConfig configures a consumer group.
type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Workers    int
	BufferSize int
	RetryMax   int
	BackoffMin time.Duration
	BackoffMax time.Duration
	// DLQTopic receives messages that exhausted their retries. Empty leaves
	// them uncommitted.
	DLQTopic string
	MinBytes int
	MaxBytes int
	Logger   *applogger.Logger
}

func (c ConsumerConfig) withDefaults() (ConsumerConfig, error) {
	if len(c.Brokers) == 0 {
		return c, errors.New("kafka consumer: brokers are required")
	}
	if c.GroupID == "" {
		return c, errors.New("kafka consumer: group id is required")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 16
	}
	if c.RetryMax < 0 {
		c.RetryMax = 0
	}
	if c.BackoffMin <= 0 {
		c.BackoffMin = 50 * time.Millisecond
	}
	if c.BackoffMax < c.BackoffMin {
		c.BackoffMax = max(c.BackoffMin, 2*time.Second)
	}
	if c.MinBytes <= 0 {
		c.MinBytes = 1
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 << 20
	}
	if c.Logger == nil {
		c.Logger = applogger.Nop()
	}
	return c, nil
}
