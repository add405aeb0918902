package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pulseops_events_published_total",
		Help: "Domain events handed to the bus, by event type",
	}, []string{"type"})
	EventsConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pulseops_events_consumed_total",
		Help: "Domain events successfully processed by a consumer, by event type",
	}, []string{"type"})
	BusDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pulseops_bus_dropped_total",
		Help: "Bus deliveries dropped because a subscriber buffer was full",
	})
	StreamDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pulseops_stream_dropped_total",
		Help: "Live-stream deliveries dropped because an observer buffer was full",
	})
	StreamSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pulseops_stream_subscribers",
		Help: "Currently attached live-stream observers",
	})
	DLQPushed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pulseops_dlq_pushed_total",
		Help: "Envelopes pushed to the dead-letter queue",
	})
)

func init() {
	prometheus.MustRegister(
		EventsPublished,
		EventsConsumed,
		BusDropped,
		StreamDropped,
		StreamSubscribers,
		DLQPushed,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
