package intake

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var submissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lead_submissions_total",
		Help: "Contact form submissions accepted, by fraud flag.",
	},
	[]string{"flag"},
)
