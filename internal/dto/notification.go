package dto

import "encoding/json"

type AppointmentNotificationRequest struct {
	UserID        string `json:"userId,omitempty"`
	LawyerID      string `json:"lawyerId,omitempty"`
	AppointmentID string `json:"appointmentId"`
	Status        string `json:"status,omitempty"`
	Message       string `json:"message,omitempty"`
}

type DocumentNotificationRequest struct {
	UserID     string          `json:"userId,omitempty"`
	DocumentID string          `json:"documentId"`
	Status     string          `json:"status"`
	Progress   *float64        `json:"progress,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// EventRequest carries an application-defined event for broadcast or room
// delivery.
type EventRequest struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type NotificationResponse struct {
	Delivered int  `json:"delivered"`
	Published bool `json:"published"`
}
