package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: production
scheduler:
  interval: 2m
  bars: 300
signals:
  weights:
    ETH: 1.2
symbols:
  defaults: [btc, eth]
`))
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 2*time.Minute, c.Scheduler.Interval)
	assert.Equal(t, 300, c.Scheduler.Bars)
	assert.Equal(t, 1.2, c.Signals.Weights["ETH"])
	assert.Equal(t, []string{"btc", "eth"}, c.Symbols.Defaults)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "binance", c.PriceSource.Type)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"bars":        "scheduler:\n  bars: 10\n",
		"price":       "price_source:\n  type: polygon\n",
		"sink":        "sink:\n  type: kafka\n",
		"lambda":      "signals:\n  ewma_lambda: 1.5\n",
		"weight":      "signals:\n  weights:\n    BTC: -1\n",
		"queue":       "queue:\n  enabled: true\n",
		"ch source":   "price_source:\n  type: clickhouse\n",
		"environment": "environment: \"\"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\n"), 0o644))

	t.Setenv("COINPULSE_SYMBOLS", "BTC, XRP ,,GALA")
	t.Setenv("MODEL_API_BASE", "http://model:8000")
	t.Setenv("REDIS_ADDR", "redis:6379")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "XRP", "GALA"}, c.Symbols.Defaults)
	assert.Equal(t, "http://model:8000", c.Model.BaseURL)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
