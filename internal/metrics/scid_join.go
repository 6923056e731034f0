// Package metrics exposes application metrics collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	indexBuildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "p2wsh_utxo",
		Subsystem: "index",
		Name:      "build_total",
		Help:      "Count of UTXO index builds.",
	}, []string{"status"})

	indexBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "p2wsh_utxo",
		Subsystem: "index",
		Name:      "build_duration_seconds",
		Help:      "Duration of loading the UTXO dump into the index.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s..~34m
	}, []string{"status"})

	indexRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "p2wsh_utxo",
		Subsystem: "index",
		Name:      "records",
		Help:      "Number of UTXOs held by the index.",
	})

	indexTransactions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "p2wsh_utxo",
		Subsystem: "index",
		Name:      "transactions",
		Help:      "Number of distinct transaction ids held by the index.",
	})

	joinPositionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "p2wsh_utxo",
		Subsystem: "join",
		Name:      "positions_total",
		Help:      "Count of position records scanned, by lookup result.",
	}, []string{"format", "mode", "result"})

	joinMatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "p2wsh_utxo",
		Subsystem: "join",
		Name:      "matched_total",
		Help:      "Count of enriched UTXO records emitted.",
	}, []string{"format", "mode"})

	joinFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "p2wsh_utxo",
		Subsystem: "join",
		Name:      "flush_total",
		Help:      "Count of output artifacts written.",
	}, []string{"format", "mode", "status"})

	joinFlushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "p2wsh_utxo",
		Subsystem: "join",
		Name:      "flush_duration_seconds",
		Help:      "Duration of writing an output artifact.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format", "mode", "status"})

	joinFlushSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "p2wsh_utxo",
		Subsystem: "join",
		Name:      "flush_size",
		Help:      "Number of records per output artifact.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 12), // 1..4M
	}, []string{"format", "mode"})
)

// ScidJoin records metrics of one join run.
type ScidJoin struct {
	format string
	mode   string
}

func NewScidJoin(format, mode string) *ScidJoin {
	if format == "" {
		format = "unknown"
	}
	if mode == "" {
		mode = "unknown"
	}
	return &ScidJoin{format: format, mode: mode}
}

func (m ScidJoin) ObserveIndexBuild(err error, records, transactions int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	indexBuildTotal.WithLabelValues(status).Inc()
	indexBuildDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	indexRecords.Set(float64(records))
	indexTransactions.Set(float64(transactions))
}

func (m ScidJoin) ObservePosition(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	joinPositionsTotal.WithLabelValues(m.format, m.mode, result).Inc()
}

func (m ScidJoin) ObserveMatched(n int) {
	joinMatchedTotal.WithLabelValues(m.format, m.mode).Add(float64(n))
}

func (m ScidJoin) ObserveFlush(err error, size int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	joinFlushTotal.WithLabelValues(m.format, m.mode, status).Inc()
	joinFlushDuration.WithLabelValues(m.format, m.mode, status).Observe(time.Since(started).Seconds())
	joinFlushSize.WithLabelValues(m.format, m.mode).Observe(float64(size))
}
