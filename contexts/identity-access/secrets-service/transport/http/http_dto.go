package http

import "time"

type CreateKeyRequest struct {
	Name string `json:"name"`
}

// CreateKeyResponse is the only place the plaintext key ever appears.
type CreateKeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type KeyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	Active     bool       `json:"active"`
}

type ListKeysResponse struct {
	Items []KeyResponse `json:"items"`
	Total int           `json:"total"`
}

type VerifyRequest struct {
	APIKey string `json:"apiKey"`
}

type VerifyResponse struct {
	Valid bool   `json:"valid"`
	KeyID string `json:"keyId,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
