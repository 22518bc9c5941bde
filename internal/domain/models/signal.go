package models

import "time"

// SignalState is the per-symbol directional call.
type SignalState string

const (
	StateUp      SignalState = "UP"
	StateDown    SignalState = "DOWN"
	StateNeutral SignalState = "NEUTRAL"
)

// Classification is the market-wide sentiment derived from all symbols.
type Classification string

const (
	ClassBull    Classification = "BULL"
	ClassBear    Classification = "BEAR"
	ClassNeutral Classification = "NEUTRAL"
)

// SignalResult is the outcome of evaluating one price series.
type SignalResult struct {
	State       SignalState `json:"state"`
	Score       float64     `json:"score"`
	Explanation string      `json:"explanation"`
}

// ExternalScore is an opinion reported by an external model.
// An empty Prediction means the model has no opinion.
type ExternalScore struct {
	Coin       string  `json:"coin,omitempty"`
	Prediction string  `json:"prediction"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// AggregateResult is the weighted sentiment over a set of symbol scores.
// Contributors is the number of symbols whose weight entered the average;
// zero means there was nothing to aggregate.
type AggregateResult struct {
	Classification Classification `json:"classification"`
	Score          float64        `json:"score"`
	Contributors   int            `json:"contributors"`
	Explanation    string         `json:"explanation"`
}

// Candle represents an OHLCV bar.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
