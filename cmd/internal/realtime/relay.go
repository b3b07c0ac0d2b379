package realtime

import "log/slog"

// Relay pushes persisted message records to their receivers. Delivery
// is best effort: an offline receiver, a full send queue, or a marshal
// failure is logged and dropped, never surfaced to the sender.
type Relay struct {
	log *slog.Logger
	reg *Registry
}

// NewRelay builds a relay over the given registry.
func NewRelay(log *slog.Logger, reg *Registry) *Relay {
	if log == nil {
		log = slog.Default()
	}
	return &Relay{log: log, reg: reg}
}

// Deliver enqueues record for receiverID's registered connection, if
// any. Reports whether the event was enqueued.
func (r *Relay) Deliver(receiverID string, record any) bool {
	ev, err := NewMessageEvent(record)
	if err != nil {
		metrics.relayDeliveries.WithLabelValues("error").Inc()
		r.log.Error("message event marshal failed",
			slog.String("receiver_id", receiverID),
			slog.String("error", err.Error()))
		return false
	}

	c := r.reg.Lookup(receiverID)
	if c == nil {
		metrics.relayDeliveries.WithLabelValues("offline").Inc()
		return false
	}
	if !c.TrySend(ev) {
		metrics.relayDeliveries.WithLabelValues("dropped").Inc()
		r.log.Warn("message delivery dropped",
			slog.String("receiver_id", receiverID),
			slog.String("conn_id", c.ConnID))
		return false
	}
	metrics.relayDeliveries.WithLabelValues("delivered").Inc()
	return true
}
