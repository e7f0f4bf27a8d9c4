package auth

import (
	"context"
	"strings"

	internaljwt "legal-relay-backend/internal/jwt"
)

type Service struct {
	creds  Credentials
	issuer *internaljwt.Issuer
}

func New(creds Credentials, issuer *internaljwt.Issuer) *Service {
	return &Service{
		creds:  creds,
		issuer: issuer,
	}
}

// Exchange trades an API key for a short-lived access token. The admin key
// yields an admin token, the service key a service token.
func (s *Service) Exchange(_ context.Context, params ExchangeParams) (ExchangeResult, error) {
	serviceID := strings.TrimSpace(params.ServiceID)
	apiKey := strings.TrimSpace(params.APIKey)

	if serviceID == "" || apiKey == "" {
		return ExchangeResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}

	var role internaljwt.Role
	switch {
	case internaljwt.ValidateAPIKey(s.creds.AdminKeyHash, apiKey):
		role = internaljwt.RoleAdmin
	case internaljwt.ValidateAPIKey(s.creds.ServiceKeyHash, apiKey):
		role = internaljwt.RoleService
	default:
		return ExchangeResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
	}

	tokens, err := s.issuer.CreateToken(internaljwt.Principal{ID: serviceID, Name: serviceID}, role, 0)
	if err != nil {
		return ExchangeResult{}, newError(ErrorCodeInternal, "failed to issue token", err)
	}

	return ExchangeResult{
		ServiceID: serviceID,
		Role:      role,
		Tokens:    tokens,
	}, nil
}

// IdentityFromAuthorizationHeader verifies a bearer token and checks that
// its role is at least minRole. Admin tokens satisfy service routes.
func (s *Service) IdentityFromAuthorizationHeader(header string, minRole internaljwt.Role) (Identity, error) {
	authHeader := strings.TrimSpace(header)
	if authHeader == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "missing authorization header", nil)
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid authorization header format", nil)
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "empty token", nil)
	}

	claims, err := s.issuer.ParseAny(token)
	if err != nil {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid token", err)
	}
	if claims.Role < minRole {
		return Identity{}, newError(ErrorCodeForbidden, "insufficient role", nil)
	}

	return Identity{
		ServiceID: claims.Subject,
		Role:      claims.Role,
	}, nil
}
