package clickhouse

import "fmt"

const (
	TableAggregates = "signal_aggregates"
	TableSymbols    = "signal_symbols"
	TableCandles1h  = "candles_1h"
)

// SchemaStatements returns the idempotent DDL for the signal tables in db.
func SchemaStatements(db string) []string {
	if db == "" {
		db = "default"
	}
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, db),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.%s (
            cycle_id       String,
            ts             DateTime64(3, 'UTC'),
            classification LowCardinality(String),
            score          Float64,
            contributors   UInt16,
            explanation    String,
            duration_ms    UInt32
        ) ENGINE = MergeTree
        ORDER BY ts
        TTL toDateTime(ts) + INTERVAL 180 DAY
    `, db, TableAggregates),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.%s (
            cycle_id       String,
            ts             DateTime64(3, 'UTC'),
            symbol         LowCardinality(String),
            weight         Float64,
            available      UInt8,
            state          LowCardinality(String),
            score          Float64,
            local_score    Float64,
            external_score Nullable(Float64),
            explanation    String,
            bars           UInt16
        ) ENGINE = MergeTree
        ORDER BY (symbol, ts)
        TTL toDateTime(ts) + INTERVAL 180 DAY
    `, db, TableSymbols),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.%s (
            bucket DateTime('UTC'),
            symbol LowCardinality(String),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            vol    Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, bucket)
    `, db, TableCandles1h),
	}
}
