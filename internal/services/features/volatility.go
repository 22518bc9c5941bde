package features

import (
    "iter"
    "math"
    "slices"

    "github.com/moznion/go-optional"
)

const (
    // DefaultVolWindow is the rolling window, in bars, for realized volatility.
    DefaultVolWindow = 24
    // DefaultEWMALambda is the RiskMetrics decay for the volatility forecast.
    DefaultEWMALambda = 0.94
)

// RealizedVolatility computes annualized realized volatility of the most
// recent window returns. It is None when fewer than window returns exist.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) optional.Option[float64] {
    if window < 2 || len(logReturns) < window {
        return optional.None[float64]()
    }
    sd := SampleStdDev(logReturns[len(logReturns)-window:])
    return optional.Some(sd * math.Sqrt(barsPerYear))
}

// RollingVolatility yields the annualized volatility of returns[i-window:i]
// for every i in [window, len(returns)). The sequence is lazy and can be
// ranged over any number of times.
func RollingVolatility(logReturns []float64, window int, barsPerYear float64) iter.Seq[float64] {
    scale := math.Sqrt(barsPerYear)
    return func(yield func(float64) bool) {
        if window < 2 {
            return
        }
        for i := window; i < len(logReturns); i++ {
            if !yield(SampleStdDev(logReturns[i-window:i]) * scale) {
                return
            }
        }
    }
}

// RealizedVolatilitySeries collects RollingVolatility into a slice.
func RealizedVolatilitySeries(logReturns []float64, window int, barsPerYear float64) []float64 {
    out := slices.Collect(RollingVolatility(logReturns, window, barsPerYear))
    if out == nil {
        return []float64{}
    }
    return out
}

// EWMAForecast runs sigma_t = sqrt(lambda*sigma_{t-1}^2 + (1-lambda)*rv_t^2)
// over the realized series, seeded with its first value.
func EWMAForecast(realized []float64, lambda float64) []float64 {
    out := make([]float64, len(realized))
    if len(realized) == 0 {
        return out
    }
    prev := realized[0]
    out[0] = prev
    for i := 1; i < len(realized); i++ {
        rv := realized[i]
        prev = math.Sqrt(lambda*prev*prev + (1-lambda)*rv*rv)
        out[i] = prev
    }
    return out
}

// LatestForecast returns the last EWMA forecast, None when there is no data.
func LatestForecast(realized []float64, lambda float64) optional.Option[float64] {
    f := EWMAForecast(realized, lambda)
    if len(f) == 0 {
        return optional.None[float64]()
    }
    return optional.Some(f[len(f)-1])
}

// ScaleSeries multiplies every value by factor into a new slice.
func ScaleSeries(values []float64, factor float64) []float64 {
    out := make([]float64, len(values))
    for i, v := range values {
        out[i] = v * factor
    }
    return out
}
