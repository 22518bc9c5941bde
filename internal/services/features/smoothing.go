package features

// EMA computes the exponential moving average of values with smoothing
// k = 2/(period+1), seeded with values[0]. The output has the same length as
// the input. A period below 1 is treated as 1.
func EMA(values []float64, period int) []float64 {
    if len(values) == 0 {
        return []float64{}
    }
    if period < 1 {
        period = 1
    }
    k := 2.0 / float64(period+1)
    out := make([]float64, len(values))
    out[0] = values[0]
    for i := 1; i < len(values); i++ {
        out[i] = values[i]*k + out[i-1]*(1-k)
    }
    return out
}

// LastEMA returns the final EMA value, 0 for empty input.
func LastEMA(values []float64, period int) float64 {
    out := EMA(values, period)
    if len(out) == 0 {
        return 0
    }
    return out[len(out)-1]
}
