package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	InboundJoin                   = "join"
	InboundJoinRoom               = "joinRoom"
	InboundLeaveRoom              = "leaveRoom"
	InboundChatMessage            = "chatMessage"
	InboundTyping                 = "typing"
	InboundAppointmentUpdate      = "appointmentUpdate"
	InboundDocumentAnalysisStatus = "documentAnalysisStatus"
)

// Inbound is the closed set of events a connection may send. Values are
// produced by DecodeInbound and are already validated.
type Inbound interface {
	EventName() string
	inbound()
}

type JoinEvent struct {
	UserID string `json:"userId"`
}

type JoinRoomEvent struct {
	RoomID string `json:"roomId"`
}

type LeaveRoomEvent struct {
	RoomID string `json:"roomId"`
}

type ChatMessageEvent struct {
	RoomID   string `json:"roomId"`
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type TypingEvent struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	IsTyping bool   `json:"isTyping"`
}

// AppointmentUpdate is both an inbound event and the argument of
// NotifyAppointmentChange.
type AppointmentUpdate struct {
	UserID        string `json:"userId"`
	LawyerID      string `json:"lawyerId,omitempty"`
	AppointmentID string `json:"appointmentId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// DocumentAnalysisStatus is both an inbound event and the argument of
// NotifyDocumentAnalysis.
type DocumentAnalysisStatus struct {
	UserID     string          `json:"userId"`
	DocumentID string          `json:"documentId"`
	Status     string          `json:"status"`
	Progress   *float64        `json:"progress,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

func (JoinEvent) EventName() string              { return InboundJoin }
func (JoinRoomEvent) EventName() string          { return InboundJoinRoom }
func (LeaveRoomEvent) EventName() string         { return InboundLeaveRoom }
func (ChatMessageEvent) EventName() string       { return InboundChatMessage }
func (TypingEvent) EventName() string            { return InboundTyping }
func (AppointmentUpdate) EventName() string      { return InboundAppointmentUpdate }
func (DocumentAnalysisStatus) EventName() string { return InboundDocumentAnalysisStatus }

func (JoinEvent) inbound()              {}
func (JoinRoomEvent) inbound()          {}
func (LeaveRoomEvent) inbound()         {}
func (ChatMessageEvent) inbound()       {}
func (TypingEvent) inbound()            {}
func (AppointmentUpdate) inbound()      {}
func (DocumentAnalysisStatus) inbound() {}

// ValidationError describes why an inbound frame was rejected.
type ValidationError struct {
	Event  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Event == "" {
		return fmt.Sprintf("relay: invalid frame: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("relay: invalid %s payload: %s %s", e.Event, e.Field, e.Reason)
}

func invalid(event, field, reason string) *ValidationError {
	return &ValidationError{Event: event, Field: field, Reason: reason}
}

type rawFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeInbound parses one wire frame into a typed, validated event.
func DecodeInbound(raw []byte) (Inbound, error) {
	var frame rawFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, invalid("", "frame", "is not valid JSON")
	}
	frame.Event = strings.TrimSpace(frame.Event)
	if frame.Event == "" {
		return nil, invalid("", "event", "is required")
	}

	switch frame.Event {
	case InboundJoin:
		id, err := decodeIdentifier(frame.Event, frame.Data, "userId")
		if err != nil {
			return nil, err
		}
		return JoinEvent{UserID: id}, nil

	case InboundJoinRoom:
		id, err := decodeIdentifier(frame.Event, frame.Data, "roomId")
		if err != nil {
			return nil, err
		}
		return JoinRoomEvent{RoomID: id}, nil

	case InboundLeaveRoom:
		id, err := decodeIdentifier(frame.Event, frame.Data, "roomId")
		if err != nil {
			return nil, err
		}
		return LeaveRoomEvent{RoomID: id}, nil

	case InboundChatMessage:
		var ev ChatMessageEvent
		if err := decodeObject(frame.Event, frame.Data, &ev); err != nil {
			return nil, err
		}
		ev.RoomID = strings.TrimSpace(ev.RoomID)
		if ev.RoomID == "" {
			return nil, invalid(frame.Event, "roomId", "is required")
		}
		if strings.TrimSpace(ev.Message) == "" {
			return nil, invalid(frame.Event, "message", "is required")
		}
		return ev, nil

	case InboundTyping:
		var ev TypingEvent
		if err := decodeObject(frame.Event, frame.Data, &ev); err != nil {
			return nil, err
		}
		ev.RoomID = strings.TrimSpace(ev.RoomID)
		if ev.RoomID == "" {
			return nil, invalid(frame.Event, "roomId", "is required")
		}
		return ev, nil

	case InboundAppointmentUpdate:
		var ev AppointmentUpdate
		if err := decodeObject(frame.Event, frame.Data, &ev); err != nil {
			return nil, err
		}
		if err := ev.Validate(); err != nil {
			return nil, err
		}
		return ev, nil

	case InboundDocumentAnalysisStatus:
		var ev DocumentAnalysisStatus
		if err := decodeObject(frame.Event, frame.Data, &ev); err != nil {
			return nil, err
		}
		if err := ev.Validate(); err != nil {
			return nil, err
		}
		return ev, nil

	default:
		return nil, invalid(frame.Event, "event", "is not supported")
	}
}

// Validate checks the fields NotifyAppointmentChange depends on.
func (a AppointmentUpdate) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return invalid(InboundAppointmentUpdate, "userId", "is required")
	}
	if strings.TrimSpace(a.AppointmentID) == "" {
		return invalid(InboundAppointmentUpdate, "appointmentId", "is required")
	}
	if strings.TrimSpace(a.Status) == "" {
		return invalid(InboundAppointmentUpdate, "status", "is required")
	}
	return nil
}

// Validate checks the fields NotifyDocumentAnalysis depends on.
func (d DocumentAnalysisStatus) Validate() error {
	if strings.TrimSpace(d.UserID) == "" {
		return invalid(InboundDocumentAnalysisStatus, "userId", "is required")
	}
	if strings.TrimSpace(d.DocumentID) == "" {
		return invalid(InboundDocumentAnalysisStatus, "documentId", "is required")
	}
	if strings.TrimSpace(d.Status) == "" {
		return invalid(InboundDocumentAnalysisStatus, "status", "is required")
	}
	return nil
}

func decodeObject(event string, data json.RawMessage, out interface{}) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return invalid(event, "data", "must be an object")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return invalid(event, "data", "has wrongly typed fields")
	}
	return nil
}

// decodeIdentifier accepts either a bare JSON string or an object holding
// the identifier under field.
func decodeIdentifier(event string, data json.RawMessage, field string) (string, error) {
	data = bytes.TrimSpace(data)
	var id string
	switch {
	case len(data) > 0 && data[0] == '"':
		if err := json.Unmarshal(data, &id); err != nil {
			return "", invalid(event, field, "is not a string")
		}
	case len(data) > 0 && data[0] == '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return "", invalid(event, "data", "is not valid JSON")
		}
		rawID, ok := obj[field]
		if !ok {
			return "", invalid(event, field, "is required")
		}
		if err := json.Unmarshal(rawID, &id); err != nil {
			return "", invalid(event, field, "is not a string")
		}
	default:
		return "", invalid(event, field, "is required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", invalid(event, field, "is required")
	}
	return id, nil
}
