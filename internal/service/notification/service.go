package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legal-relay-backend/internal/bus"
	"legal-relay-backend/internal/directory"
	"legal-relay-backend/internal/logger"
	"legal-relay-backend/internal/relay"
)

type Service struct {
	dispatcher Dispatcher
	directory  directory.Repository
	logger     *logger.Logger
}

// New builds a Service. dir may be nil, in which case callers must always
// name the recipients themselves.
func New(dispatcher Dispatcher, dir directory.Repository) *Service {
	return &Service{
		dispatcher: dispatcher,
		directory:  dir,
		logger:     logger.New("notification"),
	}
}

func (s *Service) NotifyAppointment(ctx context.Context, params AppointmentParams) (Receipt, error) {
	update := relay.AppointmentUpdate{
		UserID:        strings.TrimSpace(params.UserID),
		LawyerID:      strings.TrimSpace(params.LawyerID),
		AppointmentID: strings.TrimSpace(params.AppointmentID),
		Status:        strings.TrimSpace(params.Status),
		Message:       strings.TrimSpace(params.Message),
	}

	if update.AppointmentID == "" {
		return Receipt{}, newError(ErrorCodeValidation, "appointmentId is required", nil)
	}

	if update.UserID == "" && s.directory != nil {
		item, err := s.directory.Appointment(ctx, update.AppointmentID)
		if err != nil {
			return Receipt{}, lookupError("appointment", err)
		}
		update.UserID = item.UserID
		if update.LawyerID == "" {
			update.LawyerID = item.LawyerID
		}
		if update.Status == "" {
			update.Status = string(item.Status)
		}
	}

	if update.Message == "" && update.Status != "" {
		update.Message = fmt.Sprintf("Your appointment is now %s", update.Status)
	}

	if err := update.Validate(); err != nil {
		return Receipt{}, validationError(err)
	}

	receipt, err := s.dispatcher.Appointment(ctx, update)
	if err != nil {
		return Receipt{}, dispatchError(err)
	}
	s.logger.Infof("appointment %s %s dispatched (delivered=%d published=%t)", update.AppointmentID, update.Status, receipt.Delivered, receipt.Published)
	return receipt, nil
}

func (s *Service) NotifyDocument(ctx context.Context, params DocumentParams) (Receipt, error) {
	status := relay.DocumentAnalysisStatus{
		UserID:     strings.TrimSpace(params.UserID),
		DocumentID: strings.TrimSpace(params.DocumentID),
		Status:     strings.TrimSpace(params.Status),
		Progress:   params.Progress,
		Result:     params.Result,
	}

	if status.DocumentID == "" {
		return Receipt{}, newError(ErrorCodeValidation, "documentId is required", nil)
	}

	if status.UserID == "" && s.directory != nil {
		item, err := s.directory.Document(ctx, status.DocumentID)
		if err != nil {
			return Receipt{}, lookupError("document", err)
		}
		status.UserID = item.UserID
	}

	if err := status.Validate(); err != nil {
		return Receipt{}, validationError(err)
	}

	receipt, err := s.dispatcher.Document(ctx, status)
	if err != nil {
		return Receipt{}, dispatchError(err)
	}
	s.logger.Infof("document %s %s dispatched (delivered=%d published=%t)", status.DocumentID, status.Status, receipt.Delivered, receipt.Published)
	return receipt, nil
}

func (s *Service) Broadcast(ctx context.Context, params EventParams) (Receipt, error) {
	ev, err := customEvent(params)
	if err != nil {
		return Receipt{}, err
	}
	receipt, err := s.dispatcher.Broadcast(ctx, ev)
	if err != nil {
		return Receipt{}, dispatchError(err)
	}
	return receipt, nil
}

func (s *Service) SendToRoom(ctx context.Context, roomID string, params EventParams) (Receipt, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return Receipt{}, newError(ErrorCodeValidation, "roomId is required", nil)
	}
	ev, err := customEvent(params)
	if err != nil {
		return Receipt{}, err
	}
	receipt, err := s.dispatcher.Room(ctx, roomID, ev)
	if err != nil {
		return Receipt{}, dispatchError(err)
	}
	return receipt, nil
}

func customEvent(params EventParams) (bus.Event, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return bus.Event{}, newError(ErrorCodeValidation, "event is required", nil)
	}
	if relay.IsReservedEvent(name) {
		return bus.Event{}, newError(ErrorCodeValidation, fmt.Sprintf("event %q is reserved", name), nil)
	}
	return bus.Event{Name: name, Data: params.Data}, nil
}

func validationError(err error) *Error {
	var verr *relay.ValidationError
	if errors.As(err, &verr) {
		return newError(ErrorCodeValidation, fmt.Sprintf("%s %s", verr.Field, verr.Reason), err)
	}
	return newError(ErrorCodeValidation, err.Error(), err)
}

func lookupError(kind string, err error) *Error {
	if errors.Is(err, directory.ErrNotFound) {
		return newError(ErrorCodeNotFound, kind+" not found", err)
	}
	return newError(ErrorCodeInternal, "failed to resolve "+kind, err)
}

func dispatchError(err error) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return newError(ErrorCodeInternal, "failed to dispatch notification", err)
}
