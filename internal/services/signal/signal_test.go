package signal

import (
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func geometric(n int, start, growth float64) []float64 {
	out := make([]float64, n)
	p := start
	for i := range out {
		out[i] = p
		p *= growth
	}
	return out
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestScoreInsufficientData(t *testing.T) {
	want := models.SignalResult{State: models.StateNeutral, Score: 0, Explanation: "insufficient data"}
	for _, n := range []int{0, 1, 30, 59} {
		assert.Equal(t, want, Score(geometric(n, 100, 1.01)), "n=%d", n)
		assert.Equal(t, want, EvaluateSymbol(geometric(n, 100, 1.01), optional.None[models.ExternalScore]()), "n=%d", n)
	}
}

func TestScoreRisingSeriesIsUp(t *testing.T) {
	res := Score(geometric(200, 100, 1.01))
	assert.Equal(t, models.StateUp, res.State)
	assert.Greater(t, res.Score, UpThreshold)
	assert.Contains(t, res.Explanation, "score=")
}

func TestScoreFallingSeriesIsDown(t *testing.T) {
	res := Score(geometric(200, 100, 0.99))
	assert.Equal(t, models.StateDown, res.State)
	assert.Less(t, res.Score, DownThreshold)
}

func TestScoreFlatSeriesIsNeutral(t *testing.T) {
	res := Score(flat(200, 42))
	assert.Equal(t, models.StateNeutral, res.State)
	assert.InDelta(t, 0.0, res.Score, 1e-12)
	assert.Equal(t, "score=0.000, vol=0.00%", res.Explanation)
}

func TestScoreArithmeticStepStaysBelowThreshold(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100 + 0.5*float64(i)
	}
	res := Score(closes)
	assert.Greater(t, res.Score, 0.0)
	assert.Equal(t, models.StateNeutral, res.State)
}

func TestScoreInvalidData(t *testing.T) {
	closes := geometric(100, 100, 1.01)
	closes[50] = 0
	assert.Equal(t, "invalid data", Score(closes).Explanation)

	closes[50] = math.NaN()
	res := Score(closes)
	assert.Equal(t, models.StateNeutral, res.State)
	assert.False(t, math.IsNaN(res.Score))
}

func TestScoreIsIdempotent(t *testing.T) {
	closes := geometric(150, 3.2, 1.003)
	for i := range closes {
		closes[i] += 0.05 * math.Sin(float64(i))
	}
	a := EvaluateSymbol(closes, optional.None[models.ExternalScore]())
	b := EvaluateSymbol(closes, optional.None[models.ExternalScore]())
	assert.Equal(t, math.Float64bits(a.Score), math.Float64bits(b.Score))
	assert.Equal(t, a, b)
}

func TestClassifyBoundaries(t *testing.T) {
	assert.Equal(t, models.StateNeutral, Classify(UpThreshold))
	assert.Equal(t, models.StateNeutral, Classify(DownThreshold))
	assert.Equal(t, models.StateUp, Classify(math.Nextafter(UpThreshold, 1)))
	assert.Equal(t, models.StateDown, Classify(math.Nextafter(DownThreshold, -1)))
}

func TestBlendWithoutOpinionIsIdentity(t *testing.T) {
	local := models.SignalResult{State: models.StateUp, Score: 0.9, Explanation: "score=0.900, vol=1.00%"}

	assert.Equal(t, local, Blend(local, optional.None[models.ExternalScore]()))
	assert.Equal(t, local, Blend(local, optional.Some(models.ExternalScore{Score: -5, Confidence: 99})))
	assert.Equal(t, local, Blend(local, optional.Some(models.ExternalScore{Prediction: "DOWN", Score: math.NaN()})))
}

func TestBlendCombinesScores(t *testing.T) {
	local := models.SignalResult{State: models.StateUp, Score: 1.0}
	res := Blend(local, optional.Some(models.ExternalScore{Prediction: "DOWN", Score: -0.5, Confidence: 75}))

	assert.InDelta(t, 1.0*0.4-0.5*0.6, res.Score, 1e-12)
	assert.Equal(t, models.StateNeutral, res.State)
	assert.Equal(t, "client:1.00 server:-0.50", res.Explanation)

	res = Blend(models.SignalResult{Score: -1}, optional.Some(models.ExternalScore{Prediction: "DOWN", Score: -1}))
	assert.Equal(t, models.StateDown, res.State)
}

func TestAggregateExcludesZeroScore(t *testing.T) {
	res := Aggregate([]SymbolScore{
		Present("BTC", 1.0),
		Present("XRP", -1.0),
		Present("GALA", 0.0),
	}, DefaultWeights())

	assert.InDelta(t, 0.2, res.Score, 1e-12)
	assert.Equal(t, models.ClassNeutral, res.Classification)
	assert.Equal(t, 2, res.Contributors)
	assert.Equal(t, "Aggregate score: 0.200", res.Explanation)
}

func TestAggregateClassification(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, models.ClassBull, Aggregate([]SymbolScore{Present("BTC", 0.8), Present("ETH", 0.6)}, w).Classification)
	assert.Equal(t, models.ClassBear, Aggregate([]SymbolScore{Present("BTC", -0.8)}, w).Classification)
	assert.Equal(t, models.ClassNeutral, Aggregate([]SymbolScore{Present("BTC", 0.5)}, w).Classification)
}

func TestAggregateNoData(t *testing.T) {
	res := Aggregate([]SymbolScore{Absent("BTC"), Present("XRP", 0), Present("SOL", math.NaN())}, DefaultWeights())
	assert.Equal(t, models.AggregateResult{
		Classification: models.ClassNeutral,
		Score:          0,
		Contributors:   0,
		Explanation:    "Aggregate score: n/a",
	}, res)

	res = Aggregate(nil, DefaultWeights())
	assert.Equal(t, 0, res.Contributors)
}

func TestAggregateCancellingScoresReportZero(t *testing.T) {
	// 1.5*0.5 + 1.0*(-0.75) == 0 exactly
	res := Aggregate([]SymbolScore{Present("BTC", 0.5), Present("XRP", -0.75)}, DefaultWeights())

	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 2, res.Contributors)
	assert.Equal(t, models.ClassNeutral, res.Classification)
	assert.Equal(t, "Aggregate score: 0.000", res.Explanation)
}

func TestAggregateAbsentScoreDropsWeight(t *testing.T) {
	res := Aggregate([]SymbolScore{Present("BTC", 1.0), Absent("XRP")}, DefaultWeights())
	assert.InDelta(t, 1.0, res.Score, 1e-12)
	assert.Equal(t, 1, res.Contributors)
}

func TestWeightsFor(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, 1.5, w.For("BTC"))
	assert.Equal(t, 1.5, w.For("btc"))
	assert.Equal(t, 0.8, w.For("GALA"))
	assert.Equal(t, DefaultWeight, w.For("DOGE"))
}

func TestScoresFromSignals(t *testing.T) {
	scores := ScoresFromSignals([]models.SymbolSignal{
		{Symbol: "BTC", Available: true, Result: models.SignalResult{Score: 0.7}},
		{Symbol: "ETH", Available: false},
	})
	require.Len(t, scores, 2)
	assert.True(t, scores[0].Score.IsSome())
	assert.Equal(t, 0.7, scores[0].Score.Unwrap())
	assert.True(t, scores[1].Score.IsNone())
}
