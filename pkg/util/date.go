package util

import (
    "strconv"
    "time"
)

// unix timestamps above this are taken as milliseconds
const unixMilliCutoff = 1e11

// ParseTime accepts RFC3339 (with or without fraction), a bare date, or a
// unix timestamp in seconds or milliseconds. Results are UTC.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if n, err := strconv.ParseInt(s, 10, 64); err == nil {
        switch {
        case n <= 0:
            return time.Time{}, false
        case n >= unixMilliCutoff:
            return time.UnixMilli(n).UTC(), true
        default:
            return time.Unix(n, 0).UTC(), true
        }
    }
    for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
        if t, err := time.Parse(layout, s); err == nil {
            return t.UTC(), true
        }
    }
    return time.Time{}, false
}

// ParseTimeDefault returns def when s is empty or unparseable.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}
