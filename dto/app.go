// Package dto defines the request and response shapes of the management API.
package dto

import (
	"time"

	"github.com/nexauth/nexauth/models"
)

// CreateAppRequest is the payload for registering a client application.
type CreateAppRequest struct {
	Name         string         `json:"name" binding:"required"`
	Description  string         `json:"description"`
	URL          string         `json:"url" binding:"required,url"`
	LogoURL      string         `json:"logoUrl"`
	SupportEmail string         `json:"supportEmail"`
	Scopes       []models.Scope `json:"scopes"`
	RedirectURIs []string       `json:"redirectUris"`
}

// UpdateAppRequest carries the mutable settings fields; nil means unchanged.
// clientId and owner are deliberately absent — they are immutable.
type UpdateAppRequest struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	LogoURL      *string         `json:"logoUrl"`
	SupportEmail *string         `json:"supportEmail"`
	Scopes       *[]models.Scope `json:"scopes"`
	RedirectURIs *[]string       `json:"redirectUris"`
}

// CreateAppResponse returns the new app and its initial secret. The
// plaintext secret is shown exactly once and cannot be retrieved again.
type CreateAppResponse struct {
	App          *models.ClientApp `json:"app"`
	ClientSecret string            `json:"clientSecret"`
}

// RotateSecretResponse returns a freshly minted secret, shown exactly once.
type RotateSecretResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// SecretResponse is the outward-facing view of a stored client secret:
// metadata only, never the hash.
type SecretResponse struct {
	ID        string     `json:"id"`
	AppID     string     `json:"appId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	State     string     `json:"state"`
}

// FromSecret converts a stored secret to its outward-facing view.
func FromSecret(s *models.ClientSecret, now time.Time) SecretResponse {
	return SecretResponse{
		ID:        s.ID,
		AppID:     s.AppID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
		State:     s.StateAt(now).String(),
	}
}

// FromSecrets converts a slice of stored secrets.
func FromSecrets(list []models.ClientSecret, now time.Time) []SecretResponse {
	out := make([]SecretResponse, len(list))
	for i := range list {
		out[i] = FromSecret(&list[i], now)
	}
	return out
}
