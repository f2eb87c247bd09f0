package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollsCreatedTotal tracks successfully created polls.
	PollsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pollhub_polls_created_total",
		Help: "The total number of polls created",
	})

	// VotesCastTotal tracks applied votes by kind.
	VotesCastTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollhub_votes_cast_total",
			Help: "The total number of vote operations applied",
		},
		[]string{"kind"}, // new, changed, unchanged
	)

	// QuotaDenialsTotal tracks poll creations rejected by the quota policy.
	QuotaDenialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pollhub_quota_denials_total",
		Help: "The total number of poll creations denied by quota",
	})

	// AchievementsUnlockedTotal tracks achievement unlocks by key.
	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollhub_achievements_unlocked_total",
			Help: "The total number of achievements unlocked",
		},
		[]string{"key"},
	)

	// BroadcastsTotal tracks change notifications published by type.
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollhub_broadcasts_total",
			Help: "The total number of change notifications published",
		},
		[]string{"type"},
	)

	// StoreSaveSeconds tracks time spent persisting the state.
	StoreSaveSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pollhub_store_save_seconds",
		Help:    "Time taken to persist the application state in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// WebsocketClients tracks currently connected change-feed clients.
	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pollhub_websocket_clients",
		Help: "The number of connected websocket change-feed clients",
	})

	// ChainRPCRequestsTotal tracks chain RPC requests by status.
	ChainRPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollhub_chain_rpc_requests_total",
			Help: "The total number of chain RPC requests",
		},
		[]string{"status"},
	)

	// ChainEndpointHealth tracks chain RPC endpoint health.
	ChainEndpointHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pollhub_chain_endpoint_health",
			Help: "Health status of chain RPC endpoints (1 = healthy, 0 = unhealthy)",
		},
		[]string{"endpoint"},
	)
)

// RecordVote records an applied vote operation.
func RecordVote(kind string) {
	VotesCastTotal.WithLabelValues(kind).Inc()
}

// RecordAchievement records an achievement unlock.
func RecordAchievement(key string) {
	AchievementsUnlockedTotal.WithLabelValues(key).Inc()
}

// RecordBroadcast records a published change notification.
func RecordBroadcast(changeType string) {
	BroadcastsTotal.WithLabelValues(changeType).Inc()
}

// RecordStoreSave records the time taken to persist the state.
func RecordStoreSave(seconds float64) {
	StoreSaveSeconds.Observe(seconds)
}

// RecordChainRPCRequest records a chain RPC request with the given status.
func RecordChainRPCRequest(status string) {
	ChainRPCRequestsTotal.WithLabelValues(status).Inc()
}

// SetChainEndpointHealth sets the health status of a chain RPC endpoint.
func SetChainEndpointHealth(endpoint string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	ChainEndpointHealth.WithLabelValues(endpoint).Set(value)
}
