package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
)

var (
	ordersEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_orders_enqueued_total",
			Help: "Total number of orders enqueued.",
		},
		[]string{"priority"},
	)

	ordersCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_orders_completed_total",
			Help: "Total number of orders that finished processing.",
		},
		[]string{"priority"},
	)

	ordersRequeued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orderbot_orders_requeued_total",
			Help: "Total number of in-flight orders returned to the queue by unit removal.",
		},
	)

	orderWaitSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderbot_order_wait_seconds",
			Help:    "Simulated time from enqueue to assignment, in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"priority"},
	)

	ordersPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderbot_orders_pending",
			Help: "Number of orders waiting in the queue.",
		},
	)

	ordersCompletedHeld = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderbot_orders_completed_held",
			Help: "Number of orders in the completed collection.",
		},
	)

	unitsByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orderbot_units",
			Help: "Number of units by state.",
		},
		[]string{"state"},
	)

	eventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orderbot_events_dropped_total",
			Help: "Events not delivered to slow stream subscribers.",
		},
	)
)

func init() {
	prometheus.MustRegister(ordersEnqueued)
	prometheus.MustRegister(ordersCompleted)
	prometheus.MustRegister(ordersRequeued)
	prometheus.MustRegister(orderWaitSeconds)
	prometheus.MustRegister(ordersPending)
	prometheus.MustRegister(ordersCompletedHeld)
	prometheus.MustRegister(unitsByState)
	prometheus.MustRegister(eventsDropped)

	// Pre-initialize label combinations so they appear in /metrics from startup.
	for _, p := range []string{model.PriorityStandard, model.PriorityExpedited} {
		ordersEnqueued.WithLabelValues(p)
		ordersCompleted.WithLabelValues(p)
	}
	unitsByState.WithLabelValues(model.UnitIdle)
	unitsByState.WithLabelValues(model.UnitBusy)
}
