// Package signal turns hourly close series into directional signals and
// combines them into a market-wide reading. Everything here is pure.
package signal

import (
	"fmt"
	"math"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/features"
)

const (
	MinCloses        = 60
	FastEMAPeriod    = 12
	SlowEMAPeriod    = 26
	MeanReturnWindow = 6
	VolatilityWindow = features.DefaultVolWindow

	MomentumWeight    = 1.2
	MeanReturnWeight  = 100.0
	VolatilityPenalty = 0.02

	UpThreshold   = 0.6
	DownThreshold = -0.6
)

const (
	explainInsufficient = "insufficient data"
	explainInvalid      = "invalid data"
)

// Score evaluates a chronological close series.
func Score(closes []float64) models.SignalResult {
	if len(closes) < MinCloses {
		return neutral(explainInsufficient)
	}
	if !features.IsValidSeries(closes) {
		return neutral(explainInvalid)
	}

	returns := features.ComputeLogReturns(closes)

	momentum := 0.0
	slow := features.LastEMA(closes, SlowEMAPeriod)
	if slow != 0 {
		momentum = (features.LastEMA(closes, FastEMAPeriod) - slow) / slow
	}

	meanRet := features.Mean(returns[len(returns)-MeanReturnWindow:])

	vol, err := features.RealizedVolatility(returns, VolatilityWindow, features.HoursPerYear).Take()
	if err != nil {
		return neutral(explainInsufficient)
	}

	score := momentum*MomentumWeight + meanRet*MeanReturnWeight - vol*VolatilityPenalty
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return neutral(explainInvalid)
	}

	return models.SignalResult{
		State:       Classify(score),
		Score:       score,
		Explanation: fmt.Sprintf("score=%.3f, vol=%.2f%%", score, vol),
	}
}

// Classify maps a score to a state using the per-symbol thresholds.
func Classify(score float64) models.SignalState {
	switch {
	case score > UpThreshold:
		return models.StateUp
	case score < DownThreshold:
		return models.StateDown
	default:
		return models.StateNeutral
	}
}

func neutral(explanation string) models.SignalResult {
	return models.SignalResult{State: models.StateNeutral, Score: 0, Explanation: explanation}
}
