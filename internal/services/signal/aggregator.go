package signal

import (
	"fmt"
	"math"
	"strings"

	"github.com/moznion/go-optional"

	"CoinPulse/internal/domain/models"
)

const (
	BullThreshold = 0.5
	BearThreshold = -0.5

	DefaultWeight = 1.0
)

// DefaultWeights returns the built-in importance weights.
func DefaultWeights() Weights {
	return Weights{
		BySymbol: map[string]float64{"BTC": 1.5, "XRP": 1.0, "GALA": 0.8},
		Default:  DefaultWeight,
	}
}

// Weights assigns an aggregation weight to each symbol.
type Weights struct {
	BySymbol map[string]float64
	Default  float64
}

// For returns the weight of symbol, falling back to Default.
func (w Weights) For(symbol string) float64 {
	if v, ok := w.BySymbol[strings.ToUpper(symbol)]; ok {
		return v
	}
	return w.Default
}

// SymbolScore is one aggregation input. An absent Score means the symbol
// produced nothing this cycle.
type SymbolScore struct {
	Symbol string
	Score  optional.Option[float64]
}

// Present builds a SymbolScore holding score.
func Present(symbol string, score float64) SymbolScore {
	return SymbolScore{Symbol: symbol, Score: optional.Some(score)}
}

// Absent builds a SymbolScore without a score.
func Absent(symbol string) SymbolScore {
	return SymbolScore{Symbol: symbol, Score: optional.None[float64]()}
}

// contributes decides whether a score's weight enters the denominator.
// Absent, non-finite and exactly-zero scores do not; a zero score therefore
// has no effect on the aggregate at all.
func contributes(score optional.Option[float64]) bool {
	v, err := score.Take()
	if err != nil {
		return false
	}
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Aggregate computes the weighted average of present scores and classifies it.
// With nothing to average the result is a NEUTRAL zero with Contributors 0.
func Aggregate(scores []SymbolScore, weights Weights) models.AggregateResult {
	num, den := 0.0, 0.0
	n := 0
	for _, s := range scores {
		w := weights.For(s.Symbol)
		if w <= 0 || !contributes(s.Score) {
			continue
		}
		num += s.Score.Unwrap() * w
		den += w
		n++
	}
	if den == 0 {
		den = 1
	}
	agg := num / den

	res := models.AggregateResult{
		Classification: ClassifyAggregate(agg),
		Score:          agg,
		Contributors:   n,
		Explanation:    "Aggregate score: n/a",
	}
	if n > 0 {
		res.Explanation = fmt.Sprintf("Aggregate score: %.3f", agg)
	}
	return res
}

// ClassifyAggregate maps an aggregate score to a market classification.
func ClassifyAggregate(score float64) models.Classification {
	switch {
	case score > BullThreshold:
		return models.ClassBull
	case score < BearThreshold:
		return models.ClassBear
	default:
		return models.ClassNeutral
	}
}

// ScoresFromSignals converts snapshot entries to aggregation inputs.
// Unavailable symbols become absent.
func ScoresFromSignals(signals []models.SymbolSignal) []SymbolScore {
	out := make([]SymbolScore, 0, len(signals))
	for _, s := range signals {
		if !s.Available {
			out = append(out, Absent(s.Symbol))
			continue
		}
		out = append(out, Present(s.Symbol, s.Result.Score))
	}
	return out
}
