// Package bus carries relay commands from processes without sockets (the
// public API) to the websocket server that owns the connections.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"legal-relay-backend/internal/relay"
)

const (
	KindAppointment = "appointment"
	KindDocument    = "document"
	KindBroadcast   = "broadcast"
	KindRoom        = "room"
)

var ErrClosed = errors.New("bus: closed")

// Bus is a best-effort publish/subscribe transport. Messages published while
// no subscriber is listening are lost.
type Bus interface {
	Publish(ctx context.Context, channel string, env Envelope) error
	// Subscribe calls handle for every envelope on channel until ctx is done.
	Subscribe(ctx context.Context, channel string, handle func(Envelope)) error
	Close() error
}

// Event is a named application event with a raw JSON payload.
type Event struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Envelope struct {
	Kind        string                        `json:"kind"`
	Appointment *relay.AppointmentUpdate      `json:"appointment,omitempty"`
	Document    *relay.DocumentAnalysisStatus `json:"document,omitempty"`
	Event       *Event                        `json:"event,omitempty"`
	RoomID      string                        `json:"roomId,omitempty"`
	SentAt      time.Time                     `json:"sentAt"`
}

func AppointmentEnvelope(u relay.AppointmentUpdate) Envelope {
	return Envelope{Kind: KindAppointment, Appointment: &u, SentAt: time.Now().UTC()}
}

func DocumentEnvelope(d relay.DocumentAnalysisStatus) Envelope {
	return Envelope{Kind: KindDocument, Document: &d, SentAt: time.Now().UTC()}
}

func BroadcastEnvelope(ev Event) Envelope {
	return Envelope{Kind: KindBroadcast, Event: &ev, SentAt: time.Now().UTC()}
}

func RoomEnvelope(roomID string, ev Event) Envelope {
	return Envelope{Kind: KindRoom, RoomID: roomID, Event: &ev, SentAt: time.Now().UTC()}
}

// Validate checks that the envelope carries the payload its kind needs.
func (e Envelope) Validate() error {
	switch e.Kind {
	case KindAppointment:
		if e.Appointment == nil {
			return fmt.Errorf("bus: %s envelope without appointment", e.Kind)
		}
		return e.Appointment.Validate()
	case KindDocument:
		if e.Document == nil {
			return fmt.Errorf("bus: %s envelope without document", e.Kind)
		}
		return e.Document.Validate()
	case KindBroadcast, KindRoom:
		if e.Event == nil || strings.TrimSpace(e.Event.Name) == "" {
			return fmt.Errorf("bus: %s envelope without event name", e.Kind)
		}
		if relay.IsReservedEvent(e.Event.Name) {
			return fmt.Errorf("bus: %s envelope uses reserved event %q", e.Kind, e.Event.Name)
		}
		if e.Kind == KindRoom && strings.TrimSpace(e.RoomID) == "" {
			return fmt.Errorf("bus: room envelope without roomId")
		}
		return nil
	default:
		return fmt.Errorf("bus: unknown envelope kind %q", e.Kind)
	}
}

// ApplyTo performs the envelope's command against r and returns the number
// of connections reached.
func (e Envelope) ApplyTo(r *relay.Relay) (int, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	switch e.Kind {
	case KindAppointment:
		return r.NotifyAppointmentChange(*e.Appointment), nil
	case KindDocument:
		return r.NotifyDocumentAnalysis(*e.Document), nil
	case KindBroadcast:
		return r.Broadcast(relay.Custom{Name: e.Event.Name, Data: e.Event.Data}), nil
	default:
		return r.SendToRoom(e.RoomID, relay.Custom{Name: e.Event.Name, Data: e.Event.Data}), nil
	}
}

func encode(env Envelope) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("bus: marshal envelope: %w", err)
	}
	return payload, nil
}

func decode(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return env, fmt.Errorf("bus: unmarshal envelope: %w", err)
	}
	if err := env.Validate(); err != nil {
		return env, err
	}
	return env, nil
}
