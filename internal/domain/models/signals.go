package models

import "time"

// SymbolSignal is one symbol's entry in a cycle snapshot.
type SymbolSignal struct {
	Symbol    string         `json:"symbol"`
	Weight    float64        `json:"weight"`
	Available bool           `json:"available"`
	Result    SignalResult   `json:"result"`
	Local     SignalResult   `json:"local"`
	External  *ExternalScore `json:"external,omitempty"`
	Bars      int            `json:"bars"`
	Error     string         `json:"error,omitempty"`
}

// Snapshot is the output of one evaluation cycle.
type Snapshot struct {
	CycleID   string          `json:"cycle_id"`
	Timestamp time.Time       `json:"timestamp"`
	Signals   []SymbolSignal  `json:"signals"`
	Aggregate AggregateResult `json:"aggregate"`
	Duration  time.Duration   `json:"duration_ns"`
}

// Signal returns the entry for symbol, if the snapshot has one.
func (s *Snapshot) Signal(symbol string) (SymbolSignal, bool) {
	for _, sig := range s.Signals {
		if sig.Symbol == symbol {
			return sig, true
		}
	}
	return SymbolSignal{}, false
}

// AggregatePoint is a stored aggregate reading used for history queries.
type AggregatePoint struct {
	CycleID        string         `json:"cycle_id"`
	Timestamp      time.Time      `json:"timestamp"`
	Classification Classification `json:"classification"`
	Score          float64        `json:"score"`
	Contributors   int            `json:"contributors"`
}

// VolatilitySeries is the realized volatility series of a symbol together
// with its EWMA forecast. Values are annualized percentages.
type VolatilitySeries struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Window    int       `json:"window"`
	Lambda    float64   `json:"lambda"`
	Realized  []float64 `json:"realized"`
	Forecast  []float64 `json:"forecast"`
	Latest    *float64  `json:"latest_forecast"`
}
