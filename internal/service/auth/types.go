package auth

import internaljwt "legal-relay-backend/internal/jwt"

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeForbidden    ErrorCode = "forbidden"
	ErrorCodeInternal     ErrorCode = "internal_error"
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

// Credentials holds the bcrypt hashes of the API keys that may be exchanged
// for tokens.
type Credentials struct {
	ServiceKeyHash string
	AdminKeyHash   string
}

type ExchangeParams struct {
	ServiceID string
	APIKey    string
}

type ExchangeResult struct {
	ServiceID string
	Role      internaljwt.Role
	Tokens    internaljwt.TokenResponse
}

// Identity is the verified caller behind a bearer token.
type Identity struct {
	ServiceID string
	Role      internaljwt.Role
}
