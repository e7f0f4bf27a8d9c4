package notification

import (
	"context"

	"legal-relay-backend/internal/bus"
	"legal-relay-backend/internal/relay"
)

// Dispatcher hands a validated notification to the relay, directly or
// through the bus.
type Dispatcher interface {
	Appointment(ctx context.Context, update relay.AppointmentUpdate) (Receipt, error)
	Document(ctx context.Context, status relay.DocumentAnalysisStatus) (Receipt, error)
	Broadcast(ctx context.Context, ev bus.Event) (Receipt, error)
	Room(ctx context.Context, roomID string, ev bus.Event) (Receipt, error)
}

// LocalDispatcher calls the relay owned by this process.
type LocalDispatcher struct {
	relay *relay.Relay
}

func NewLocalDispatcher(r *relay.Relay) *LocalDispatcher {
	return &LocalDispatcher{relay: r}
}

func (d *LocalDispatcher) Appointment(_ context.Context, update relay.AppointmentUpdate) (Receipt, error) {
	return Receipt{Delivered: d.relay.NotifyAppointmentChange(update)}, nil
}

func (d *LocalDispatcher) Document(_ context.Context, status relay.DocumentAnalysisStatus) (Receipt, error) {
	return Receipt{Delivered: d.relay.NotifyDocumentAnalysis(status)}, nil
}

func (d *LocalDispatcher) Broadcast(_ context.Context, ev bus.Event) (Receipt, error) {
	return Receipt{Delivered: d.relay.Broadcast(relay.Custom{Name: ev.Name, Data: ev.Data})}, nil
}

func (d *LocalDispatcher) Room(_ context.Context, roomID string, ev bus.Event) (Receipt, error) {
	return Receipt{Delivered: d.relay.SendToRoom(roomID, relay.Custom{Name: ev.Name, Data: ev.Data})}, nil
}

// BusDispatcher publishes commands for the websocket server to apply.
type BusDispatcher struct {
	bus     bus.Bus
	channel string
}

func NewBusDispatcher(b bus.Bus, channel string) *BusDispatcher {
	return &BusDispatcher{bus: b, channel: channel}
}

func (d *BusDispatcher) Appointment(ctx context.Context, update relay.AppointmentUpdate) (Receipt, error) {
	return d.publish(ctx, bus.AppointmentEnvelope(update))
}

func (d *BusDispatcher) Document(ctx context.Context, status relay.DocumentAnalysisStatus) (Receipt, error) {
	return d.publish(ctx, bus.DocumentEnvelope(status))
}

func (d *BusDispatcher) Broadcast(ctx context.Context, ev bus.Event) (Receipt, error) {
	return d.publish(ctx, bus.BroadcastEnvelope(ev))
}

func (d *BusDispatcher) Room(ctx context.Context, roomID string, ev bus.Event) (Receipt, error) {
	return d.publish(ctx, bus.RoomEnvelope(roomID, ev))
}

func (d *BusDispatcher) publish(ctx context.Context, env bus.Envelope) (Receipt, error) {
	if err := d.bus.Publish(ctx, d.channel, env); err != nil {
		return Receipt{}, newError(ErrorCodeUnavailable, "failed to publish notification", err)
	}
	return Receipt{Published: true}, nil
}
