package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    EndpointLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "coinpulse",
            Subsystem: "api",
            Name:      "latency_seconds",
            Help:      "Latency of signal endpoints",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"endpoint"},
    )

    EndpointErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "coinpulse",
            Subsystem: "api",
            Name:      "errors_total",
            Help:      "Errors by signal endpoint",
        },
        []string{"endpoint"},
    )

    CacheHits = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "coinpulse",
            Subsystem: "api",
            Name:      "cache_hits_total",
            Help:      "Response cache hits by endpoint",
        },
        []string{"endpoint"},
    )

    StreamClients = prometheus.NewGauge(
        prometheus.GaugeOpts{
            Namespace: "coinpulse",
            Subsystem: "ws",
            Name:      "clients",
            Help:      "Connected websocket clients",
        },
    )
)

func Register() {
    once.Do(func() {
        prometheus.MustRegister(EndpointLatency, EndpointErrors, CacheHits, StreamClients)
    })
}
