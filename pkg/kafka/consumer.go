package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	applogger "CoinPulse/pkg/logger"
)

// MessageHandler consumes every message of one topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer reads registered topics as one consumer group. Each partition is
// pinned to a single worker so messages of a partition are handled in order.
type Consumer struct {
	cfg      ConsumerConfig
	l        *applogger.Logger
	hook     ConsumerHook
	handlers map[string]MessageHandler
	readers  map[string]*kafka.Reader
	lanes    []chan kafka.Message
	dlq      *kafka.Writer

	cancel   context.CancelFunc
	readWG   sync.WaitGroup
	workWG   sync.WaitGroup
	stopOnce sync.Once
}

// NewConsumer creates a Consumer. Handlers must be registered before Start.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	c := &Consumer{
		cfg:      cfg,
		l:        cfg.Logger,
		hook:     NoopHook{},
		handlers: make(map[string]MessageHandler),
		readers:  make(map[string]*kafka.Reader),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Topic: cfg.DLQTopic, Balancer: &kafka.LeastBytes{}}
	}
	consumerMetricsOnce.Do(registerConsumerMetrics)
	return c, nil
}

// Use installs the lifecycle hook. Nil keeps the current one.
func (c *Consumer) Use(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

// RegisterHandler binds handler to its topic. A second handler for the same
// topic is ignored.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.l.Warn("kafka handler already registered", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// Start opens one reader per topic and launches the workers.
func (c *Consumer) Start(context.Context) error {
	if len(c.handlers) == 0 {
		return errors.New("kafka consumer: no handlers registered")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.lanes = make([]chan kafka.Message, c.cfg.Workers)
	for i := range c.lanes {
		c.lanes[i] = make(chan kafka.Message, c.cfg.BufferSize)
		c.workWG.Add(1)
		go c.work(ctx, c.lanes[i])
	}

	for topic := range c.handlers {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
		c.readers[topic] = r
		c.readWG.Add(1)
		go c.read(ctx, topic, r)
	}

	c.l.Info("kafka consumer started",
		applogger.String("group", c.cfg.GroupID),
		applogger.Int("topics", len(c.readers)),
		applogger.Int("workers", c.cfg.Workers))
	return nil
}

// Stop halts reading, drains the worker lanes and closes the readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		if c.cancel == nil {
			return
		}
		c.cancel()
		c.readWG.Wait()
		for _, lane := range c.lanes {
			close(lane)
		}

		done := make(chan struct{})
		go func() {
			c.workWG.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = fmt.Errorf("wait for kafka workers: %w", ctx.Err())
		}

		for topic, r := range c.readers {
			if cerr := r.Close(); cerr != nil {
				c.l.Warn("close kafka reader", applogger.String("topic", topic), applogger.Error(cerr))
			}
		}
		if c.dlq != nil {
			if cerr := c.dlq.Close(); cerr != nil {
				c.l.Warn("close dlq writer", applogger.Error(cerr))
			}
		}
		c.l.Info("kafka consumer stopped")
	})
	return err
}

func (c *Consumer) read(ctx context.Context, topic string, r *kafka.Reader) {
	defer c.readWG.Done()
	for {
		km, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.l.Error("kafka fetch", applogger.String("topic", topic), applogger.Error(err))
			if !wait(ctx, c.cfg.BackoffMax) {
				return
			}
			continue
		}
		lane := c.lanes[km.Partition%len(c.lanes)]
		consumerLag.WithLabelValues(topic).Set(float64(r.Lag()))
		select {
		case lane <- km:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) work(ctx context.Context, lane <-chan kafka.Message) {
	defer c.workWG.Done()
	for km := range lane {
		start := time.Now()
		err := c.process(ctx, km)
		outcome := "ok"
		switch {
		case err == nil:
		case ctx.Err() != nil:
			// left uncommitted so the group redelivers it
			continue
		case c.dlq != nil:
			outcome = "dead_lettered"
			c.deadLetter(km, err)
		default:
			outcome = "failed"
		}
		consumerHandled.WithLabelValues(km.Topic, outcome).Inc()
		consumerLatency.WithLabelValues(km.Topic).Observe(time.Since(start).Seconds())
		if outcome != "failed" {
			c.commit(km)
		}
	}
}

// process runs the handler with retries. Panics count as failures.
func (c *Consumer) process(ctx context.Context, km kafka.Message) (err error) {
	h, ok := c.handlers[km.Topic]
	if !ok {
		return fmt.Errorf("no handler for topic %s", km.Topic)
	}
	for attempt := 0; ; attempt++ {
		err = c.attempt(ctx, h, km)
		if err == nil || attempt >= c.cfg.RetryMax {
			break
		}
		if !wait(ctx, backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt+1)) {
			return ctx.Err()
		}
	}
	if err != nil {
		c.hook.OnError(ctx, km.Topic, km, km.Value, err)
		c.l.Error("kafka handler failed",
			applogger.String("topic", km.Topic),
			applogger.Int64("offset", km.Offset),
			applogger.Int("retries", c.cfg.RetryMax),
			applogger.Error(err))
	}
	return err
}

func (c *Consumer) attempt(ctx context.Context, h MessageHandler, km kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	hctx, hkm, data, err := c.hook.BeforeHandle(ctx, km.Topic, km, km.Value)
	if err != nil {
		return err
	}
	err = h.Handle(hctx, data)
	c.hook.AfterHandle(hctx, km.Topic, hkm, data, err)
	return err
}

func (c *Consumer) deadLetter(km kafka.Message, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Key:   km.Key,
		Value: km.Value,
		Headers: append(km.Headers,
			kafka.Header{Key: "source_topic", Value: []byte(km.Topic)},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
		),
	})
	if err != nil {
		c.l.Error("dlq write", applogger.String("topic", c.cfg.DLQTopic), applogger.Error(err))
	}
}

func (c *Consumer) commit(km kafka.Message) {
	r := c.readers[km.Topic]
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = r.CommitMessages(ctx, km)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoffWithJitter(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
	c.l.Error("kafka commit", applogger.String("topic", km.Topic), applogger.Int64("offset", km.Offset), applogger.Error(err))
}

// backoffWithJitter doubles min per attempt up to max and subtracts up to
// half of it at random.
func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := min
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	if half := int64(d) / 2; half > 0 {
		d -= time.Duration(rand.Int64N(half))
	}
	return d
}

func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var (
	consumerMetricsOnce sync.Once
	consumerHandled     *prometheus.CounterVec
	consumerLatency     *prometheus.HistogramVec
	consumerLag         *prometheus.GaugeVec
)

func registerConsumerMetrics() {
	consumerHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinpulse_kafka_consumer_messages_total",
		Help: "Consumed messages by outcome",
	}, []string{"topic", "outcome"})
	consumerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "coinpulse_kafka_consumer_handle_seconds",
		Help: "Handling time per message including retries",
	}, []string{"topic"})
	consumerLag = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "coinpulse_kafka_consumer_lag",
		Help: "Reader lag reported after each fetch",
	}, []string{"topic"})
}
