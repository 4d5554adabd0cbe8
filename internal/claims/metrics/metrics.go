package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Submitted    prometheus.Counter
	Decisions    *prometheus.CounterVec
	AutoApproved prometheus.Counter
	PayoutVolume prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Submitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nomadpool_claims_submitted_total",
			Help: "Claims accepted for processing.",
		}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nomadpool_claim_decisions_total",
			Help: "Claim decisions, labelled by outcome.",
		}, []string{"outcome"}),
		AutoApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nomadpool_claims_auto_approved_total",
			Help: "Claims approved without an adjudicator.",
		}),
		PayoutVolume: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nomadpool_claim_payouts_micro",
			Help: "Approved payout volume, in micro units.",
		}),
	}
}
