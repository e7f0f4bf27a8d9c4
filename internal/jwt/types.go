package jwt

import "time"

type Role int

const (
	RoleService Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleService:
		return "service"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

const DefaultTokenTTL = 15 * time.Minute

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// Principal is the caller a token is issued to: a backend service or an
// operator.
type Principal struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Claims is the verified content of an access token.
type Claims struct {
	Subject   string
	Name      string
	TokenID   string
	Role      Role
	ExpiresAt int64
}
