package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "legal_relay_ws_connections",
			Help: "Current number of open websocket connections.",
		},
	)
	wsFramesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_relay_ws_frames_received_total",
			Help: "Inbound websocket frames by event and decode result.",
		},
		[]string{"event", "result"},
	)
	wsFramesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "legal_relay_ws_frames_written_total",
			Help: "Frames written to websocket connections.",
		},
	)
	wsBusEnvelopes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_relay_bus_envelopes_total",
			Help: "Bus envelopes applied to the relay by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsFramesReceived, wsFramesWritten, wsBusEnvelopes)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func countFrame(event, result string) {
	if event == "" {
		event = "unknown"
	}
	wsFramesReceived.WithLabelValues(event, result).Inc()
}

func countWritten() {
	wsFramesWritten.Inc()
}

func countEnvelope(kind, result string) {
	wsBusEnvelopes.WithLabelValues(kind, result).Inc()
}
