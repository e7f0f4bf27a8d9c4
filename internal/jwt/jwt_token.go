package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Issuer signs and verifies HS256 access tokens. Each role has its own
// secret and a trailing role character, so a service token can never pass
// as an admin token.
type Issuer struct {
	secrets map[Role]string
	ttl     time.Duration
	now     func() time.Time
}

func NewIssuer(serviceSecret, adminSecret string) *Issuer {
	secrets := map[Role]string{}
	if serviceSecret != "" {
		secrets[RoleService] = serviceSecret
	}
	if adminSecret != "" {
		secrets[RoleAdmin] = adminSecret
	}
	return &Issuer{secrets: secrets, ttl: DefaultTokenTTL, now: time.Now}
}

// WithTTL returns a copy of the issuer using ttl for new tokens.
func (i *Issuer) WithTTL(ttl time.Duration) *Issuer {
	cp := *i
	if ttl > 0 {
		cp.ttl = ttl
	}
	return &cp
}

func roleChar(role Role) string {
	switch role {
	case RoleService:
		return "1"
	case RoleAdmin:
		return "2"
	}
	return ""
}

func roleFromChar(c string) (Role, bool) {
	switch c {
	case "1":
		return RoleService, true
	case "2":
		return RoleAdmin, true
	}
	return 0, false
}

func (i *Issuer) CreateToken(p Principal, role Role, validUntil int64) (TokenResponse, error) {
	secret, ok := i.secrets[role]
	if !ok {
		return TokenResponse{}, fmt.Errorf("no secret configured for role %s", role)
	}
	if p.ID == "" {
		return TokenResponse{}, fmt.Errorf("principal id is required")
	}

	if validUntil == 0 {
		validUntil = i.now().Add(i.ttl).Unix()
	}

	claims := jwt.MapClaims{
		"sub":  p.ID,
		"name": p.Name,
		"jti":  uuid.NewString(),
		"iat":  i.now().Unix(),
		"exp":  validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken: tokenString + roleChar(role),
		TokenType:   "Bearer",
		ExpiresAt:   validUntil,
	}, nil
}

// ParseToken verifies tokenString as a token of the given role.
func (i *Issuer) ParseToken(tokenString string, role Role) (Claims, error) {
	if len(tokenString) < 2 {
		return Claims{}, fmt.Errorf("token string is empty")
	}
	if tokenString[len(tokenString)-1:] != roleChar(role) {
		return Claims{}, fmt.Errorf("invalid role character in token")
	}
	return i.parse(tokenString[:len(tokenString)-1], role)
}

// ParseAny verifies tokenString against whichever role its trailing
// character names.
func (i *Issuer) ParseAny(tokenString string) (Claims, error) {
	if len(tokenString) < 2 {
		return Claims{}, fmt.Errorf("token string is empty")
	}
	role, ok := roleFromChar(tokenString[len(tokenString)-1:])
	if !ok {
		return Claims{}, fmt.Errorf("invalid role character in token")
	}
	return i.parse(tokenString[:len(tokenString)-1], role)
}

func (i *Issuer) parse(raw string, role Role) (Claims, error) {
	secret, ok := i.secrets[role]
	if !ok {
		return Claims{}, fmt.Errorf("no secret configured for role %s", role)
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("unauthorized: %v", err)
	}
	if !token.Valid {
		return Claims{}, fmt.Errorf("token is not valid - unauthorized")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("claims of unauthorized type")
	}

	claims := Claims{Role: role}
	claims.Subject, _ = mc["sub"].(string)
	claims.Name, _ = mc["name"].(string)
	claims.TokenID, _ = mc["jti"].(string)
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = int64(exp)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// HashAPIKey returns the bcrypt hash stored in configuration for key.
func HashAPIKey(key string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), 10)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func ValidateAPIKey(hashedKey, key string) bool {
	if hashedKey == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key)) == nil
}
