package signal

import (
	"fmt"
	"math"

	"github.com/moznion/go-optional"

	"CoinPulse/internal/domain/models"
)

const (
	LocalBlendWeight    = 0.4
	ExternalBlendWeight = 0.6
)

// HasOpinion reports whether an external score should take part in blending.
func HasOpinion(ext optional.Option[models.ExternalScore]) bool {
	e, err := ext.Take()
	if err != nil {
		return false
	}
	return e.Prediction != "" && !math.IsNaN(e.Score) && !math.IsInf(e.Score, 0)
}

// Blend merges a local result with an external opinion. Without an opinion
// the local result is returned unchanged.
func Blend(local models.SignalResult, ext optional.Option[models.ExternalScore]) models.SignalResult {
	if !HasOpinion(ext) {
		return local
	}
	e := ext.Unwrap()
	combined := local.Score*LocalBlendWeight + e.Score*ExternalBlendWeight
	return models.SignalResult{
		State:       Classify(combined),
		Score:       combined,
		Explanation: fmt.Sprintf("client:%.2f server:%.2f", local.Score, e.Score),
	}
}

// EvaluateSymbol scores closes and blends in the external opinion, if any.
func EvaluateSymbol(closes []float64, ext optional.Option[models.ExternalScore]) models.SignalResult {
	return Blend(Score(closes), ext)
}
