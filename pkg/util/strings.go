package util

import (
    "strconv"
    "strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
    if s == "" {
        return def
    }
    v, err := strconv.Atoi(strings.TrimSpace(s))
    if err != nil {
        return def
    }
    return v
}

// NormalizeSymbol trims and uppercases a ticker.
func NormalizeSymbol(s string) string {
    return strings.ToUpper(strings.TrimSpace(s))
}

// SplitSymbols splits a comma separated list into normalized, non-empty tickers.
func SplitSymbols(s string) []string {
    return NormalizeSymbols(strings.Split(s, ","))
}

// NormalizeSymbols normalizes every ticker and drops empty ones.
func NormalizeSymbols(in []string) []string {
    out := make([]string, 0, len(in))
    for _, s := range in {
        if s = NormalizeSymbol(s); s != "" {
            out = append(out, s)
        }
    }
    return out
}
