package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metrics = struct {
	connections        prometheus.Gauge
	onlineUsers        prometheus.Gauge
	presenceBroadcasts prometheus.Counter
	relayDeliveries    *prometheus.CounterVec
}{
	connections: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nexus_ws_connections",
		Help: "Attached websocket transports, anonymous included.",
	}),
	onlineUsers: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nexus_online_users",
		Help: "Users with a registered connection.",
	}),
	presenceBroadcasts: promauto.NewCounter(prometheus.CounterOpts{
		Name: "nexus_presence_broadcasts_total",
		Help: "Presence snapshot announcements performed.",
	}),
	relayDeliveries: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_relay_deliveries_total",
		Help: "Message relay attempts by outcome.",
	}, []string{"outcome"}),
}
