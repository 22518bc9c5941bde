package ratelimit

import (
    "sync"
    "time"
)

type bucket struct {
    tokens float64
    last   time.Time
}

// Limiter is a keyed token bucket.
type Limiter struct {
    capacity   float64
    refillRate float64 // tokens per second

    mu  sync.Mutex
    m   map[string]*bucket
    now func() time.Time
}

func New(capacity, refillPerSec float64) *Limiter {
    if capacity < 1 {
        capacity = 1
    }
    if refillPerSec < 0 {
        refillPerSec = 0
    }
    return &Limiter{capacity: capacity, refillRate: refillPerSec, m: make(map[string]*bucket), now: time.Now}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
    l.mu.Lock()
    defer l.mu.Unlock()

    now := l.now()
    b, ok := l.m[key]
    if !ok {
        b = &bucket{tokens: l.capacity, last: now}
        l.m[key] = b
    }
    // refill
    if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
        b.tokens += elapsed * l.refillRate
        if b.tokens > l.capacity {
            b.tokens = l.capacity
        }
        b.last = now
    }
    if b.tokens >= 1 {
        b.tokens -= 1
        return true
    }
    return false
}

// Prune drops buckets untouched for longer than idle and returns how many
// were removed.
func (l *Limiter) Prune(idle time.Duration) int {
    l.mu.Lock()
    defer l.mu.Unlock()

    cutoff := l.now().Add(-idle)
    n := 0
    for k, b := range l.m {
        if b.last.Before(cutoff) {
            delete(l.m, k)
            n++
        }
    }
    return n
}
