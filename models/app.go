package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Scope is a named grant a client application may request.
type Scope string

const (
	ScopeOpenID        Scope = "openid"
	ScopeProfile       Scope = "profile"
	ScopeEmail         Scope = "email"
	ScopeOfflineAccess Scope = "offline_access"
)

// ScopeList is an ordered list of scopes stored as a JSON text column so the
// same model works on Postgres and sqlite.
type ScopeList []Scope

func (l ScopeList) Value() (driver.Value, error) {
	if l == nil {
		l = ScopeList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *ScopeList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Contains reports whether the list holds the given scope.
func (l ScopeList) Contains(s Scope) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Strings returns the scopes as plain strings.
func (l ScopeList) Strings() []string {
	out := make([]string, len(l))
	for i, s := range l {
		out[i] = string(s)
	}
	return out
}

// StringList is a JSON-encoded list of strings (redirect URIs).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Contains reports whether the list holds an exact match for s. Redirect URI
// checks rely on this being exact-string, never prefix.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}

// ClientApp is a registered OAuth client application owned by a principal.
// ClientID is the public identifier presented in the authorize/token flows;
// it is generated once and never mutable.
type ClientApp struct {
	ID           string     `gorm:"column:id;primaryKey" json:"id"`
	UserID       string     `gorm:"column:user_id;index" json:"userId"`
	Name         string     `gorm:"column:name" json:"name"`
	Description  string     `gorm:"column:description" json:"description,omitempty"`
	URL          string     `gorm:"column:url" json:"url"`
	LogoURL      string     `gorm:"column:logo_url" json:"logoUrl,omitempty"`
	SupportEmail string     `gorm:"column:support_email" json:"supportEmail,omitempty"`
	Scopes       ScopeList  `gorm:"column:scopes;type:text" json:"scopes"`
	RedirectURIs StringList `gorm:"column:redirect_uris;type:text" json:"redirectUris"`
	ClientID     string     `gorm:"column:client_id;uniqueIndex" json:"clientId"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (ClientApp) TableName() string { return "client_apps" }

// ClientSecret stores only the bcrypt hash of a secret; the plaintext is
// returned once at creation and never persisted. Multiple secrets may be
// active per app at the same time to support zero-downtime rotation.
type ClientSecret struct {
	ID           string     `gorm:"column:id;primaryKey" json:"id"`
	AppID        string     `gorm:"column:app_id;index" json:"appId"`
	HashedSecret string     `gorm:"column:hashed_secret" json:"-"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"createdAt"`
	ExpiresAt    *time.Time `gorm:"column:expires_at" json:"expiresAt,omitempty"`
	RevokedAt    *time.Time `gorm:"column:revoked_at" json:"revokedAt,omitempty"`
}

func (ClientSecret) TableName() string { return "client_secrets" }

// StateAt derives the secret's credential state at the given instant.
func (s *ClientSecret) StateAt(now time.Time) CredentialState {
	return credentialStateAt(s.RevokedAt, s.ExpiresAt, now)
}

// AppUser records that a principal has authorized a client application.
type AppUser struct {
	AppID        string    `gorm:"column:app_id;uniqueIndex:idx_app_users_pair" json:"appId"`
	UserID       string    `gorm:"column:user_id;uniqueIndex:idx_app_users_pair" json:"userId"`
	AuthorizedAt time.Time `gorm:"column:authorized_at" json:"authorizedAt"`
}

func (AppUser) TableName() string { return "app_users" }
