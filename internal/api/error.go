package api

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	StatusCode int
	Message    string
	ErrorLog   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

type ApiError struct {
	Error string `json:"message"`
}

// NewHTTPError builds an HTTPError whose log detail defaults to the message.
func NewHTTPError(status int, message string, cause error) *HTTPError {
	if cause == nil {
		cause = errors.New(message)
	}
	return &HTTPError{StatusCode: status, Message: message, ErrorLog: cause}
}

var errMethodNotAllowed = &HTTPError{
	StatusCode: http.StatusMethodNotAllowed,
	Message:    "Method not allowed.",
}
