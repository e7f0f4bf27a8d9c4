package notification

import "encoding/json"

type ErrorCode string

const (
	ErrorCodeValidation  ErrorCode = "validation_error"
	ErrorCodeNotFound    ErrorCode = "not_found"
	ErrorCodeUnavailable ErrorCode = "unavailable"
	ErrorCodeInternal    ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Receipt reports what happened to a notification. Delivered counts
// connections reached in this process; Published is set when the command
// went out on the bus instead.
type Receipt struct {
	Delivered int  `json:"delivered"`
	Published bool `json:"published"`
}

type AppointmentParams struct {
	UserID        string
	LawyerID      string
	AppointmentID string
	Status        string
	Message       string
}

type DocumentParams struct {
	UserID     string
	DocumentID string
	Status     string
	Progress   *float64
	Result     json.RawMessage
}

type EventParams struct {
	Name string
	Data json.RawMessage
}
