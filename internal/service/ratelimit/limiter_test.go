package ratelimit

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestLimiter(capacity, refill float64) (*Limiter, *fakeClock) {
    clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
    l := New(capacity, refill)
    l.now = clk.Now
    return l, clk
}

func TestAllowConsumesCapacity(t *testing.T) {
    l, _ := newTestLimiter(3, 1)
    assert.True(t, l.Allow("a"))
    assert.True(t, l.Allow("a"))
    assert.True(t, l.Allow("a"))
    assert.False(t, l.Allow("a"))
    assert.True(t, l.Allow("b"), "keys have separate buckets")
}

func TestAllowRefills(t *testing.T) {
    l, clk := newTestLimiter(2, 2)
    assert.True(t, l.Allow("a"))
    assert.True(t, l.Allow("a"))
    assert.False(t, l.Allow("a"))

    clk.t = clk.t.Add(500 * time.Millisecond)
    assert.True(t, l.Allow("a"))
    assert.False(t, l.Allow("a"))

    clk.t = clk.t.Add(time.Hour)
    assert.True(t, l.Allow("a"))
    assert.True(t, l.Allow("a"))
    assert.False(t, l.Allow("a"), "refill is capped at capacity")
}

func TestPrune(t *testing.T) {
    l, clk := newTestLimiter(1, 1)
    l.Allow("old")
    clk.t = clk.t.Add(10 * time.Minute)
    l.Allow("new")

    assert.Equal(t, 1, l.Prune(5*time.Minute))
    assert.Len(t, l.m, 1)
    assert.Contains(t, l.m, "new")
}
