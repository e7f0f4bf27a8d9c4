package endpoints

import (
	"errors"
	"net/http"

	"legal-relay-backend/internal/dto"
	"legal-relay-backend/internal/service/notification"
)

type NotificationEndpoints interface {
	Appointments(http.ResponseWriter, *http.Request) error
	Documents(http.ResponseWriter, *http.Request) error
	Broadcast(http.ResponseWriter, *http.Request) error
	Room(http.ResponseWriter, *http.Request) error
}

type notificationEndpoints struct {
	service *notification.Service
}

func NewNotificationEndpoints(service *notification.Service) NotificationEndpoints {
	return &notificationEndpoints{service: service}
}

func (h *notificationEndpoints) Appointments(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleAppointment,
	})
}

func (h *notificationEndpoints) Documents(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleDocument,
	})
}

func (h *notificationEndpoints) Broadcast(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleBroadcast,
	})
}

func (h *notificationEndpoints) Room(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRoom,
	})
}

func (h *notificationEndpoints) handleAppointment(w http.ResponseWriter, r *http.Request) error {
	var req dto.AppointmentNotificationRequest
	if err := decodeJSON(w, r, &req, "appointment notification"); err != nil {
		return err
	}

	receipt, err := h.service.NotifyAppointment(r.Context(), notification.AppointmentParams{
		UserID:        req.UserID,
		LawyerID:      req.LawyerID,
		AppointmentID: req.AppointmentID,
		Status:        req.Status,
		Message:       req.Message,
	})
	if err != nil {
		return h.serviceError(err)
	}
	return writeReceipt(w, receipt)
}

func (h *notificationEndpoints) handleDocument(w http.ResponseWriter, r *http.Request) error {
	var req dto.DocumentNotificationRequest
	if err := decodeJSON(w, r, &req, "document notification"); err != nil {
		return err
	}

	receipt, err := h.service.NotifyDocument(r.Context(), notification.DocumentParams{
		UserID:     req.UserID,
		DocumentID: req.DocumentID,
		Status:     req.Status,
		Progress:   req.Progress,
		Result:     req.Result,
	})
	if err != nil {
		return h.serviceError(err)
	}
	return writeReceipt(w, receipt)
}

func (h *notificationEndpoints) handleBroadcast(w http.ResponseWriter, r *http.Request) error {
	var req dto.EventRequest
	if err := decodeJSON(w, r, &req, "broadcast"); err != nil {
		return err
	}

	receipt, err := h.service.Broadcast(r.Context(), notification.EventParams{Name: req.Event, Data: req.Data})
	if err != nil {
		return h.serviceError(err)
	}
	return writeReceipt(w, receipt)
}

func (h *notificationEndpoints) handleRoom(w http.ResponseWriter, r *http.Request) error {
	roomID, err := pathID(r)
	if err != nil {
		return err
	}

	var req dto.EventRequest
	if err := decodeJSON(w, r, &req, "room event"); err != nil {
		return err
	}

	receipt, err := h.service.SendToRoom(r.Context(), roomID, notification.EventParams{Name: req.Event, Data: req.Data})
	if err != nil {
		return h.serviceError(err)
	}
	return writeReceipt(w, receipt)
}

// A published command has not been delivered yet, so it is reported as
// accepted rather than OK.
func writeReceipt(w http.ResponseWriter, receipt notification.Receipt) error {
	status := http.StatusOK
	if receipt.Published {
		status = http.StatusAccepted
	}
	return WriteJSON(w, status, dto.NotificationResponse{
		Delivered: receipt.Delivered,
		Published: receipt.Published,
	})
}

func (h *notificationEndpoints) serviceError(err error) error {
	var svcErr *notification.Error
	if errors.As(err, &svcErr) {
		status := http.StatusInternalServerError
		switch svcErr.Code {
		case notification.ErrorCodeValidation:
			status = http.StatusBadRequest
		case notification.ErrorCodeNotFound:
			status = http.StatusNotFound
		case notification.ErrorCodeUnavailable:
			status = http.StatusServiceUnavailable
		}
		return &HTTPError{StatusCode: status, Message: svcErr.Message, ErrorLog: err}
	}
	return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: err}
}
