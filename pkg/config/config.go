package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level        string        `yaml:"level"`
		Format       string        `yaml:"format"`
		Output       string        `yaml:"output"`
		CollectTopic string        `yaml:"collect_topic"`
		CollectEvery time.Duration `yaml:"collect_every"`
	} `yaml:"log"`
	Scheduler struct {
		Enabled       bool          `yaml:"enabled"`
		Interval      time.Duration `yaml:"interval"`
		SymbolTimeout time.Duration `yaml:"symbol_timeout"`
		Bars          int           `yaml:"bars"`
		LockTTL       time.Duration `yaml:"lock_ttl"`
	} `yaml:"scheduler"`
	Signals struct {
		Weights       map[string]float64 `yaml:"weights"`
		DefaultWeight float64            `yaml:"default_weight"`
		VolWindow     int                `yaml:"vol_window"`
		EWMALambda    float64            `yaml:"ewma_lambda"`
	} `yaml:"signals"`
	Symbols struct {
		Defaults []string `yaml:"defaults"`
		Key      string   `yaml:"key"`
	} `yaml:"symbols"`
	PriceSource struct {
		Type        string        `yaml:"type"` // binance | clickhouse
		MinInterval time.Duration `yaml:"min_interval"`
		MaxStale    time.Duration `yaml:"max_stale"`
	} `yaml:"price_source"`
	Binance struct {
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Secret   string        `yaml:"secret"`
		Quote    string        `yaml:"quote"`
		Interval string        `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"binance"`
	Model struct {
		BaseURL  string        `yaml:"base_url"`
		Timeout  time.Duration `yaml:"timeout"`
		Attempts int           `yaml:"attempts"`
	} `yaml:"model"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		SignalTTL time.Duration `yaml:"signal_ttl"`
		VolTTL    time.Duration `yaml:"vol_ttl"`
	} `yaml:"cache"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity"`
		RefillPerSec float64 `yaml:"refill_per_sec"`
	} `yaml:"rate_limit"`
	Sink struct {
		Type string `yaml:"type"` // kafka | clickhouse | none
	} `yaml:"sink"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"`
		Name       string        `yaml:"name"`
		Workers    int           `yaml:"workers"`
		MaxRetries int           `yaml:"max_retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"queue"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads a .env file if present, then config from YAML, and
// overrides it with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("COINPULSE_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("COINPULSE_SYMBOLS"); v != "" {
		c.Symbols.Defaults = splitList(v)
	}
	if v := os.Getenv("PRICE_SOURCE"); v != "" {
		c.PriceSource.Type = v
	}
	if v := os.Getenv("SINK"); v != "" {
		c.Sink.Type = v
	}
	if v := os.Getenv("MODEL_API_BASE"); v != "" {
		c.Model.BaseURL = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET"); v != "" {
		c.Binance.Secret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive")
	}
	if c.Scheduler.Bars < 60 {
		return fmt.Errorf("scheduler.bars must be at least 60, got %d", c.Scheduler.Bars)
	}
	if len(c.Symbols.Defaults) == 0 {
		return fmt.Errorf("symbols.defaults cannot be empty")
	}
	for sym, w := range c.Signals.Weights {
		if w < 0 {
			return fmt.Errorf("signals.weights[%s] must not be negative", sym)
		}
	}
	if c.Signals.EWMALambda <= 0 || c.Signals.EWMALambda >= 1 {
		return fmt.Errorf("signals.ewma_lambda must be in (0,1), got %v", c.Signals.EWMALambda)
	}
	if c.Signals.VolWindow < 2 {
		return fmt.Errorf("signals.vol_window must be at least 2")
	}

	switch c.PriceSource.Type {
	case "binance":
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("price_source.type 'clickhouse' requires clickhouse.enabled")
		}
	default:
		return fmt.Errorf("price_source.type must be 'binance' or 'clickhouse', got '%s'", c.PriceSource.Type)
	}

	switch c.Sink.Type {
	case "none":
	case "kafka":
		if !c.Kafka.Enabled || len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("sink.type 'kafka' requires kafka.enabled and kafka.brokers")
		}
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("sink.type 'clickhouse' requires clickhouse.enabled")
		}
	default:
		return fmt.Errorf("sink.type must be 'kafka', 'clickhouse' or 'none', got '%s'", c.Sink.Type)
	}

	if c.Queue.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("queue.enabled requires redis.enabled")
	}
	if c.Kafka.Consumer.Enabled && !c.ClickHouse.Enabled {
		return fmt.Errorf("kafka.consumer.enabled requires clickhouse.enabled")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
