package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"CoinPulse/internal/domain/models"
)

func TestFormatState(t *testing.T) {
	assert.Contains(t, FormatState(models.StateUp), "UP")
	assert.Contains(t, FormatState(models.StateDown), "DOWN")
	assert.Contains(t, FormatState(models.StateNeutral), "NEUTRAL")
}

func TestFormatSignalLine(t *testing.T) {
	line := FormatSignalLine(models.SymbolSignal{
		Symbol:    "BTC",
		Available: true,
		Weight:    1.5,
		Result:    models.SignalResult{State: models.StateUp, Score: 1.234, Explanation: "score=1.234"},
	})
	assert.Contains(t, line, "BTC")
	assert.Contains(t, line, "1.234")
	assert.Contains(t, line, "w=1.50")

	down := FormatSignalLine(models.SymbolSignal{Symbol: "DOGE", Error: "timeout"})
	assert.Contains(t, down, "unavailable")
	assert.Contains(t, down, "timeout")
}
