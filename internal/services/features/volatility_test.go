package features

import (
    "math"
    "testing"
)

func alternating(n int, amp float64) []float64 {
    out := make([]float64, n)
    for i := range out {
        if i%2 == 0 {
            out[i] = amp
        } else {
            out[i] = -amp
        }
    }
    return out
}

func TestComputeLogReturns(t *testing.T) {
    got := ComputeLogReturns([]float64{100, 110, 0, 121})
    if len(got) != 3 {
        t.Fatalf("len=%d", len(got))
    }
    if math.Abs(got[0]-math.Log(1.1)) > 1e-12 {
        t.Fatalf("r0=%v", got[0])
    }
    if got[1] != 0 || got[2] != 0 {
        t.Fatalf("non-positive price should yield 0, got %v", got)
    }
    if ComputeLogReturns([]float64{1}) != nil {
        t.Fatalf("expected nil for single close")
    }
}

func TestRealizedVolatilityRequiresWindow(t *testing.T) {
    if RealizedVolatility(alternating(23, 0.01), 24, HoursPerYear).IsSome() {
        t.Fatalf("expected unavailable with fewer returns than window")
    }
    v := RealizedVolatility(alternating(24, 0.01), 24, HoursPerYear)
    if v.IsNone() {
        t.Fatalf("expected a value with exactly window returns")
    }
    if v.Unwrap() <= 0 {
        t.Fatalf("expected positive vol, got %v", v.Unwrap())
    }
}

func TestRealizedVolatilityScalesLinearly(t *testing.T) {
    a := RealizedVolatility(alternating(30, 0.01), 24, HoursPerYear).Unwrap()
    b := RealizedVolatility(alternating(30, 0.03), 24, HoursPerYear).Unwrap()
    if math.Abs(b-3*a) > 1e-9 {
        t.Fatalf("vol should scale linearly: a=%v b=%v", a, b)
    }
    want := SampleStdDev(alternating(24, 0.01)) * math.Sqrt(HoursPerYear)
    if math.Abs(a-want) > 1e-12 {
        t.Fatalf("a=%v want %v", a, want)
    }
}

func TestRollingVolatilityLengthAndRestart(t *testing.T) {
    rets := alternating(40, 0.02)
    seq := RollingVolatility(rets, 24, HoursPerYear)

    first := 0
    for v := range seq {
        if v < 0 {
            t.Fatalf("negative vol %v", v)
        }
        first++
    }
    second := 0
    for range seq {
        second++
    }
    if first != 40-24 || second != first {
        t.Fatalf("points first=%d second=%d want %d", first, second, 40-24)
    }

    if got := RealizedVolatilitySeries(alternating(10, 0.02), 24, HoursPerYear); len(got) != 0 {
        t.Fatalf("expected empty series, got %d", len(got))
    }
}

func TestRollingVolatilityEarlyStop(t *testing.T) {
    n := 0
    for range RollingVolatility(alternating(100, 0.01), 24, HoursPerYear) {
        n++
        if n == 3 {
            break
        }
    }
    if n != 3 {
        t.Fatalf("n=%d", n)
    }
}

func TestEWMAForecast(t *testing.T) {
    rv := []float64{0.5, 0.8, 0.2, 0.2, 1.5, 0.0, 0.7}
    f := EWMAForecast(rv, DefaultEWMALambda)
    if len(f) != len(rv) {
        t.Fatalf("len=%d", len(f))
    }
    if f[0] != rv[0] {
        t.Fatalf("seed=%v want %v", f[0], rv[0])
    }
    for i := 1; i < len(rv); i++ {
        lo := math.Min(f[i-1], rv[i])
        hi := math.Max(f[i-1], rv[i])
        if f[i] < lo-1e-12 || f[i] > hi+1e-12 {
            t.Fatalf("forecast[%d]=%v outside [%v,%v]", i, f[i], lo, hi)
        }
    }
}

func TestEWMAForecastEmpty(t *testing.T) {
    if got := EWMAForecast(nil, DefaultEWMALambda); len(got) != 0 {
        t.Fatalf("expected empty, got %v", got)
    }
    if LatestForecast(nil, DefaultEWMALambda).IsSome() {
        t.Fatalf("expected no forecast for empty input")
    }
    if LatestForecast([]float64{0.3}, DefaultEWMALambda).Unwrap() != 0.3 {
        t.Fatalf("single-point forecast should equal the seed")
    }
}

func TestIsValidSeries(t *testing.T) {
    if !IsValidSeries([]float64{1, 2, 3}) {
        t.Fatalf("expected valid")
    }
    for _, bad := range [][]float64{{1, 0}, {1, -2}, {math.NaN()}, {math.Inf(1)}} {
        if IsValidSeries(bad) {
            t.Fatalf("expected invalid: %v", bad)
        }
    }
}
