package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	completionsTotal   prometheus.Counter
	pointsAwardedTotal prometheus.Counter
	badgesAwardedTotal prometheus.Counter
	rewardClaimsTotal  prometheus.Counter
	walletDenialsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "familyflow_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "familyflow_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		completionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "familyflow_completions_total",
			Help: "Total number of assignment completions processed.",
		})

		pointsAwardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "familyflow_points_awarded_total",
			Help: "Total points deposited into student wallets.",
		})

		badgesAwardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "familyflow_badges_awarded_total",
			Help: "Total badges earned by students.",
		})

		rewardClaimsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "familyflow_reward_claims_total",
			Help: "Total reward redemptions.",
		})

		walletDenialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "familyflow_wallet_denials_total",
			Help: "Wallet operations rejected for insufficient balance.",
		}, []string{"operation"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			completionsTotal,
			pointsAwardedTotal,
			badgesAwardedTotal,
			rewardClaimsTotal,
			walletDenialsTotal,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// Completions exposes the completion counter.
func Completions() prometheus.Counter {
	RegisterMetrics()
	return completionsTotal
}

// PointsAwarded exposes the deposited-points counter.
func PointsAwarded() prometheus.Counter {
	RegisterMetrics()
	return pointsAwardedTotal
}

// BadgesAwarded exposes the badge counter.
func BadgesAwarded() prometheus.Counter {
	RegisterMetrics()
	return badgesAwardedTotal
}

// RewardClaims exposes the redemption counter.
func RewardClaims() prometheus.Counter {
	RegisterMetrics()
	return rewardClaimsTotal
}

// WalletDenials exposes the per-operation denial counter.
func WalletDenials() *prometheus.CounterVec {
	RegisterMetrics()
	return walletDenialsTotal
}
