package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the pool account.
type Metrics struct {
	Balance            prometheus.Gauge
	ContributionsTotal prometheus.Counter
	WithdrawalsTotal   prometheus.Counter
}

// New creates and registers all pool metrics.
func New() *Metrics {
	return &Metrics{
		Balance: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "nomadpool_pool_balance_units",
			Help: "Current pool balance in micro-units",
		}),
		ContributionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nomadpool_pool_contributions_total",
			Help: "Total number of voluntary pool contributions",
		}),
		WithdrawalsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nomadpool_pool_withdrawals_total",
			Help: "Total number of administrative pool withdrawals",
		}),
	}
}
