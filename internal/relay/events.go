package relay

import (
	"encoding/json"
	"time"
)

const (
	EventConnected              = "connected"
	EventUserJoined             = "userJoined"
	EventUserLeft               = "userLeft"
	EventChatMessage            = "chatMessage"
	EventUserTyping             = "userTyping"
	EventNotification           = "notification"
	EventDocumentAnalysisUpdate = "documentAnalysisUpdate"
	EventError                  = "error"
)

var builtinEvents = map[string]struct{}{
	EventConnected:              {},
	EventUserJoined:             {},
	EventUserLeft:               {},
	EventChatMessage:            {},
	EventUserTyping:             {},
	EventNotification:           {},
	EventDocumentAnalysisUpdate: {},
	EventError:                  {},
}

// IsReservedEvent reports whether name belongs to an event the relay emits
// itself. Custom events may not use these names.
func IsReservedEvent(name string) bool {
	_, ok := builtinEvents[name]
	return ok
}

const (
	KindAppointment = "appointment"
	KindDocument    = "document"
	KindSystem      = "system"
)

// DocumentStatusCompleted is the analysis status that also raises a
// document notification.
const DocumentStatusCompleted = "completed"

const (
	connectedMessage        = "Successfully connected to real-time updates"
	documentCompleteMessage = "Your document analysis is complete!"
)

// Outbound is an event the relay pushes to connections.
type Outbound interface {
	EventName() string
}

type Connected struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type UserJoined struct {
	ConnectionID string    `json:"connectionId"`
	RoomID       string    `json:"roomId"`
	Timestamp    time.Time `json:"timestamp"`
}

type UserLeft struct {
	ConnectionID string    `json:"connectionId"`
	RoomID       string    `json:"roomId"`
	Timestamp    time.Time `json:"timestamp"`
}

type ChatMessage struct {
	ID           string    `json:"id"`
	Message      string    `json:"message"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	Timestamp    time.Time `json:"timestamp"`
	ConnectionID string    `json:"connectionId"`
}

type UserTyping struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	IsTyping  bool      `json:"isTyping"`
	Timestamp time.Time `json:"timestamp"`
}

// Notification is pushed to a personal channel. It is never stored.
type Notification struct {
	Kind          string    `json:"kind"`
	Message       string    `json:"message"`
	AppointmentID string    `json:"appointmentId,omitempty"`
	DocumentID    string    `json:"documentId,omitempty"`
	Status        string    `json:"status,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type DocumentAnalysisUpdate struct {
	DocumentID string          `json:"documentId"`
	Status     string          `json:"status"`
	Progress   *float64        `json:"progress,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Custom carries an application-defined event name and payload, used by
// Broadcast and SendToRoom.
type Custom struct {
	Name string
	Data json.RawMessage
}

// ErrorEvent reports a rejected inbound frame back to its sender only.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (Connected) EventName() string              { return EventConnected }
func (UserJoined) EventName() string             { return EventUserJoined }
func (UserLeft) EventName() string               { return EventUserLeft }
func (ChatMessage) EventName() string            { return EventChatMessage }
func (UserTyping) EventName() string             { return EventUserTyping }
func (Notification) EventName() string           { return EventNotification }
func (DocumentAnalysisUpdate) EventName() string { return EventDocumentAnalysisUpdate }
func (c Custom) EventName() string               { return c.Name }
func (ErrorEvent) EventName() string             { return EventError }

// Frame is the JSON envelope written to the socket.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

func NewFrame(o Outbound) Frame {
	if c, ok := o.(Custom); ok {
		if len(c.Data) == 0 {
			return Frame{Event: c.Name}
		}
		return Frame{Event: c.Name, Data: c.Data}
	}
	return Frame{Event: o.EventName(), Data: o}
}
