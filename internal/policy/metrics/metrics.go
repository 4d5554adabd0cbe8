package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PoliciesCreated   *prometheus.CounterVec
	Relocations       prometheus.Counter
	Cancellations     prometheus.Counter
	PremiumsCollected prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		PoliciesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nomadpool_policies_created_total",
			Help: "Policies created, labelled by location.",
		}, []string{"location"}),
		Relocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nomadpool_policy_relocations_total",
			Help: "Successful policy relocations.",
		}),
		Cancellations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nomadpool_policy_cancellations_total",
			Help: "Policies cancelled by their owner or an operator.",
		}),
		PremiumsCollected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nomadpool_premiums_collected_micro",
			Help: "Premium volume credited to the pool, in micro units.",
		}),
	}
}
