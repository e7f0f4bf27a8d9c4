package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	internaljwt "legal-relay-backend/internal/jwt"
	authsvc "legal-relay-backend/internal/service/auth"
)

type identityKey struct{}

// RequireRole rejects requests without a bearer token of at least role.
// The verified identity is available to handlers via IdentityFromContext.
func RequireRole(svc *authsvc.Service, role internaljwt.Role) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, err := svc.IdentityFromAuthorizationHeader(r.Header.Get("Authorization"), role)
			if err != nil {
				status := http.StatusUnauthorized
				message := "Unauthorized"
				var authErr *authsvc.Error
				if errors.As(err, &authErr) && authErr.Code == authsvc.ErrorCodeForbidden {
					status = http.StatusForbidden
					message = "Forbidden"
				}
				writeError(w, status, message)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next(w, r.WithContext(ctx))
		}
	}
}

func IdentityFromContext(ctx context.Context) (authsvc.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(authsvc.Identity)
	return identity, ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
