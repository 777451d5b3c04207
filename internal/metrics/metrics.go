package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	activeStreams       prometheus.Gauge
	segmentsServedTotal prometheus.Counter
	restartsTotal       prometheus.Counter
	streamsEndedTotal   prometheus.Counter
	errorsTotal         prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	activeStreams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rtsp_hls_active_streams",
		Help: "Number of live streams in the registry",
	})
	segmentsServedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtsp_hls_segments_served_total",
		Help: "Total number of segment files served",
	})
	restartsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtsp_hls_transcoder_restarts_total",
		Help: "Total number of transcoder restarts initiated by segment requests",
	})
	streamsEndedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtsp_hls_streams_ended_total",
		Help: "Total number of streams torn down",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtsp_hls_errors_total",
		Help: "Total number of HTTP responses with error status",
	})

	registry.MustRegister(
		activeStreams,
		segmentsServedTotal,
		restartsTotal,
		streamsEndedTotal,
		errorsTotal,
	)

	return &Metrics{
		registry: registry,

		activeStreams:       activeStreams,
		segmentsServedTotal: segmentsServedTotal,
		restartsTotal:       restartsTotal,
		streamsEndedTotal:   streamsEndedTotal,
		errorsTotal:         errorsTotal,
	}
}

func (m *Metrics) SetActiveStreams(n int) {
	m.activeStreams.Set(float64(n))
}

func (m *Metrics) IncSegmentsServed() {
	m.segmentsServedTotal.Inc()
}

func (m *Metrics) IncRestarts() {
	m.restartsTotal.Inc()
}

func (m *Metrics) IncStreamsEnded() {
	m.streamsEndedTotal.Inc()
}

func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
