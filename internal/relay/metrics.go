package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	relayConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "legal_relay_connections",
			Help: "Current number of connections attached to the relay.",
		},
	)
	relayOnlineUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "legal_relay_online_users",
			Help: "Current number of user identities with an active connection.",
		},
	)
	relayRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "legal_relay_rooms",
			Help: "Current number of non-empty rooms.",
		},
	)
	relayDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_relay_events_delivered_total",
			Help: "Events handed to a connection's send buffer.",
		},
		[]string{"event"},
	)
	relayDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_relay_events_dropped_total",
			Help: "Events that could not be handed to a connection.",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(relayConnections, relayOnlineUsers, relayRooms, relayDelivered, relayDropped)
}

func addDelivered(event string) {
	relayDelivered.WithLabelValues(event).Inc()
}

func addDropped(event string) {
	relayDropped.WithLabelValues(event).Inc()
}

func setGauges(connections, users, rooms int) {
	relayConnections.Set(float64(connections))
	relayOnlineUsers.Set(float64(users))
	relayRooms.Set(float64(rooms))
}
