package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_transactions_completed_total",
		Help: "Total number of finalized point-of-sale transactions",
	})

	TransactionsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_transactions_failed_total",
		Help: "Total number of failed transaction submissions",
	}, []string{"reason"})

	ConflictRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_conflict_rejections_total",
		Help: "Total number of cart adds rejected by service exclusivity rules",
	})

	InsufficientPaymentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_insufficient_payment_total",
		Help: "Total number of payments rejected for not covering the total",
	})

	TransactionAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_transaction_amount_centavos",
		Help:    "Distribution of finalized transaction totals in minor units",
		Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
	})

	StockCommitLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_stock_commit_latency_seconds",
		Help:    "Latency of stock commit during transaction finalization",
		Buckets: prometheus.DefBuckets,
	})

	StockOperationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_stock_operations_failed_total",
		Help: "Total number of failed stock reserve/release/commit operations",
	}, []string{"op"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staff_login_attempts_total",
		Help: "Total number of staff login attempts",
	}, []string{"result"})

	AttendanceClockTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staff_attendance_clock_total",
		Help: "Total number of attendance clock-in/clock-out operations",
	}, []string{"op"})

	ExpiryNotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_expiry_notifications_total",
		Help: "Total number of subscription expiry notifications created",
	}, []string{"level"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
