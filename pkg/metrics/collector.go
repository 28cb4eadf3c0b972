// Package metrics exposes Prometheus instrumentation for the rewards
// engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Total number of ledger transactions labeled by kind",
		},
		[]string{"kind"},
	)
	tapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taps_total",
			Help: "Total number of credited taps",
		},
	)
	levelUpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of level advancements labeled by target level",
		},
		[]string{"to"},
	)
	claimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_total",
			Help: "Periodic and coupon claims labeled by kind and outcome",
		},
		[]string{"claim", "status"},
	)
	botTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_state_transitions_total",
			Help: "Total number of bot lifecycle transitions",
		},
		[]string{"from", "to"},
	)
	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP API requests labeled by route and status",
		},
		[]string{"route", "status"},
	)
	coinSupply = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_coin_supply",
			Help: "Sum of spendable and bonus coins across player accounts",
		},
	)
	playerAccounts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_accounts",
			Help: "Current number of player accounts",
		},
	)
	bannedAccounts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "banned_player_accounts",
			Help: "Current number of banned player accounts",
		},
	)
	botsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bots_by_state",
			Help: "Number of accounts per bot lifecycle state",
		},
		[]string{"state"},
	)
)

// RecordTransaction counts a committed ledger transaction.
func RecordTransaction(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	transactionsTotal.WithLabelValues(kind).Inc()
}

// RecordTap counts a credited tap.
func RecordTap() {
	tapsTotal.Inc()
}

// RecordLevelUp counts a level advancement.
func RecordLevelUp(_, to int) {
	levelUpsTotal.WithLabelValues(strconv.Itoa(to)).Inc()
}

// RecordClaim counts a claim attempt outcome.
func RecordClaim(claim, status string) {
	if claim == "" {
		claim = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	claimsTotal.WithLabelValues(claim, status).Inc()
}

// RecordBotTransition tracks bot lifecycle transitions.
func RecordBotTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}
	botTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordRequest counts an HTTP API request and observes its duration.
func RecordRequest(route string, status int, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	requestDurationSeconds.WithLabelValues(route).Observe(duration.Seconds())
}

// SetCoinSupply updates the player coin supply gauge.
func SetCoinSupply(total float64) {
	coinSupply.Set(total)
}

// SetPlayerCounts updates the account population gauges.
func SetPlayerCounts(total, banned int) {
	playerAccounts.Set(float64(total))
	bannedAccounts.Set(float64(banned))
}

// SetBotsByState updates the per-state bot gauge.
func SetBotsByState(state string, count int) {
	if state == "" {
		state = "unknown"
	}
	botsByState.WithLabelValues(state).Set(float64(count))
}
