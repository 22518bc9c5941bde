package features

import (
    "math"

    "CoinPulse/internal/domain/models"
)

// HoursPerYear is the annualization factor for hourly bars.
const HoursPerYear = 24 * 365

// Closes extracts the close column of candles in order.
func Closes(candles []models.Candle) []float64 {
    out := make([]float64, len(candles))
    for i, c := range candles {
        out[i] = c.Close
    }
    return out
}

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(closes)-1, or nil if insufficient data.
// A step touching a non-positive price yields 0.
func ComputeLogReturns(closes []float64) []float64 {
    if len(closes) < 2 {
        return nil
    }
    out := make([]float64, 0, len(closes)-1)
    for i := 1; i < len(closes); i++ {
        prev := closes[i-1]
        cur := closes[i]
        if prev <= 0 || cur <= 0 {
            out = append(out, 0)
            continue
        }
        out = append(out, math.Log(cur/prev))
    }
    return out
}

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
    if len(values) == 0 {
        return 0
    }
    sum := 0.0
    for _, v := range values {
        sum += v
    }
    return sum / float64(len(values))
}

// SampleStdDev returns the n-1 standard deviation, 0 when fewer than two values.
func SampleStdDev(values []float64) float64 {
    n := len(values)
    if n < 2 {
        return 0
    }
    mean := Mean(values)
    ss := 0.0
    for _, v := range values {
        d := v - mean
        ss += d * d
    }
    return math.Sqrt(ss / float64(n-1))
}

// IsValidSeries reports whether every price is finite and strictly positive.
func IsValidSeries(closes []float64) bool {
    for _, c := range closes {
        if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
            return false
        }
    }
    return true
}
