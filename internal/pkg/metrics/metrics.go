package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettlementsTotal counts settlement attempts by mode and outcome
	// (settled, insufficient_balance, already_settled, error).
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_settlements_total",
		Help: "Settlement attempts by mode and outcome.",
	}, []string{"mode", "outcome"})

	// CoinsMovedTotal sums absolute ledger deltas by category.
	CoinsMovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_coins_moved_total",
		Help: "Skillcoins moved through the ledger by category.",
	}, []string{"category"})

	// OfferTransitionsTotal counts offer state machine transitions.
	OfferTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_offer_transitions_total",
		Help: "Offer status transitions by action.",
	}, []string{"action"})
)
