package config

import "time"

// Default returns a configuration that runs standalone: Binance prices, no
// Redis, no Kafka, no ClickHouse.
func Default() *Config {
	c := &Config{Environment: "development"}

	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 15 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.CORSOrigins = []string{"*"}

	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"

	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"
	c.Log.CollectEvery = 30 * time.Second

	c.Scheduler.Enabled = true
	c.Scheduler.Interval = 60 * time.Second
	c.Scheduler.SymbolTimeout = 10 * time.Second
	c.Scheduler.Bars = 200
	c.Scheduler.LockTTL = 30 * time.Second

	c.Signals.Weights = map[string]float64{"BTC": 1.5, "XRP": 1.0, "GALA": 0.8}
	c.Signals.DefaultWeight = 1.0
	c.Signals.VolWindow = 24
	c.Signals.EWMALambda = 0.94

	c.Symbols.Defaults = []string{"BTC", "ETH", "GALA", "XRP", "ADA", "DOGE", "SOL"}
	c.Symbols.Key = "symbols"

	c.PriceSource.Type = "binance"
	c.PriceSource.MinInterval = 30 * time.Second
	c.PriceSource.MaxStale = 10 * time.Minute

	c.Binance.Quote = "USDT"
	c.Binance.Interval = "1h"
	c.Binance.Timeout = 10 * time.Second

	c.Model.Timeout = 5 * time.Second
	c.Model.Attempts = 2

	c.Redis.Addr = "localhost:6379"

	c.Cache.SignalTTL = 30 * time.Second
	c.Cache.VolTTL = 60 * time.Second

	c.RateLimit.Capacity = 20
	c.RateLimit.RefillPerSec = 5

	c.Sink.Type = "none"

	c.Queue.Name = "signals"
	c.Queue.Workers = 2
	c.Queue.MaxRetries = 3
	c.Queue.RetryDelay = 5 * time.Second

	c.Kafka.Topic = "coinpulse.snapshots"
	c.Kafka.RequiredAcks = -1
	c.Kafka.Compression = "snappy"
	c.Kafka.Producer.MaxAttempts = 5
	c.Kafka.Producer.Linger = 10 * time.Millisecond
	c.Kafka.Producer.BatchSize = 100
	c.Kafka.Producer.WriteTimeout = 10 * time.Second
	c.Kafka.Producer.ReadTimeout = 10 * time.Second
	c.Kafka.Consumer.GroupID = "coinpulse-archiver"
	c.Kafka.Consumer.Workers = 2
	c.Kafka.Consumer.BufferSize = 64
	c.Kafka.Consumer.RetryMax = 3
	c.Kafka.Consumer.BackoffMin = 200 * time.Millisecond
	c.Kafka.Consumer.BackoffMax = 5 * time.Second
	c.Kafka.Consumer.MinBytes = 1
	c.Kafka.Consumer.MaxBytes = 10 << 20

	c.ClickHouse.Host = "localhost"
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "coinpulse"
	c.ClickHouse.User = "default"
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 30 * time.Second
	c.ClickHouse.MaxExecutionTime = 60 * time.Second

	return c
}
