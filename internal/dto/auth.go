package dto

type TokenRequest struct {
	ServiceID string `json:"serviceId"`
	APIKey    string `json:"apiKey"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresAt   int64  `json:"expiresAt"`
	Role        string `json:"role"`
}
