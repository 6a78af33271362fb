package reservation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_reservations_created_total",
		Help: "Total number of reservations successfully created",
	}, []string{"kind"})

	reservationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_reservations_rejected_total",
		Help: "Total number of reservation attempts rejected",
	}, []string{"kind", "reason"})
)
