package util

import (
    "reflect"
    "testing"
)

func TestParseIntDefault(t *testing.T) {
    if ParseIntDefault("", 7) != 7 || ParseIntDefault("x", 7) != 7 || ParseIntDefault(" 12 ", 7) != 12 {
        t.Fatalf("unexpected ParseIntDefault results")
    }
}

func TestSplitSymbols(t *testing.T) {
    got := SplitSymbols(" btc, xrp ,, gala")
    if !reflect.DeepEqual(got, []string{"BTC", "XRP", "GALA"}) {
        t.Fatalf("unexpected %v", got)
    }
}

func TestNormalizeSymbols(t *testing.T) {
    got := NormalizeSymbols([]string{" sol", "", "  ", "Ada"})
    if !reflect.DeepEqual(got, []string{"SOL", "ADA"}) {
        t.Fatalf("unexpected %v", got)
    }
}
