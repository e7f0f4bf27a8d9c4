package endpoints

import (
	"errors"
	"net/http"

	"legal-relay-backend/internal/dto"
	authsvc "legal-relay-backend/internal/service/auth"
)

type AuthEndpoints interface {
	Token(http.ResponseWriter, *http.Request) error
}

type authEndpoints struct {
	service *authsvc.Service
}

func NewAuthEndpoints(service *authsvc.Service) AuthEndpoints {
	return &authEndpoints{service: service}
}

func (h *authEndpoints) Token(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleToken,
	})
}

func (h *authEndpoints) handleToken(w http.ResponseWriter, r *http.Request) error {
	var req dto.TokenRequest
	if err := decodeJSON(w, r, &req, "token"); err != nil {
		return err
	}

	result, err := h.service.Exchange(r.Context(), authsvc.ExchangeParams{
		ServiceID: req.ServiceID,
		APIKey:    req.APIKey,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: result.Tokens.AccessToken,
		TokenType:   result.Tokens.TokenType,
		ExpiresAt:   result.Tokens.ExpiresAt,
		Role:        result.Role.String(),
	})
}

func (h *authEndpoints) serviceError(err error) error {
	var svcErr *authsvc.Error
	if errors.As(err, &svcErr) {
		status := http.StatusInternalServerError
		switch svcErr.Code {
		case authsvc.ErrorCodeValidation:
			status = http.StatusBadRequest
		case authsvc.ErrorCodeUnauthorized:
			status = http.StatusUnauthorized
		case authsvc.ErrorCodeForbidden:
			status = http.StatusForbidden
		}
		return &HTTPError{StatusCode: status, Message: svcErr.Message, ErrorLog: err}
	}
	return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: err}
}
