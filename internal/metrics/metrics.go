package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tradesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_journal_trades_recorded_total",
			Help: "Total number of trades stored",
		},
		[]string{"side", "category"},
	)

	tradesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_journal_trades_rejected_total",
			Help: "Total number of submissions that were not stored",
		},
		[]string{"reason"},
	)

	storageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trade_journal_storage_duration_seconds",
			Help:    "Trade store call duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"op", "status"},
	)
)

// Rejection reasons.
const (
	ReasonValidation = "validation"
	ReasonStorage    = "storage"
)

// RecordTrade counts a stored trade.
func RecordTrade(side, category string) {
	tradesRecorded.WithLabelValues(side, category).Inc()
}

// RecordRejection counts a submission that was refused or failed to store.
func RecordRejection(reason string) {
	tradesRejected.WithLabelValues(reason).Inc()
}

// ObserveStorage records how long a store call took and whether it failed.
func ObserveStorage(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	storageDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
