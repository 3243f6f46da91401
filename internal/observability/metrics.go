package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AdWatchesTotal counts ad-watch attempts by outcome (credited, cooldown, daily_limit, banned, ...).
	AdWatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_ad_watches_total",
			Help: "Ad watch attempts by outcome",
		},
		[]string{"outcome"},
	)

	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_claims_total",
			Help: "Earnings claims by outcome",
		},
		[]string{"outcome"},
	)

	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_withdrawals_total",
			Help: "Withdrawal requests by lifecycle status",
		},
		[]string{"status"},
	)

	ReferralCommissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_referral_commissions_total",
			Help: "Referral commission credits by outcome",
		},
		[]string{"outcome"},
	)
)
