package models

import "time"

// Fixed validity windows for protocol credentials.
const (
	AuthorizationCodeTTL = time.Hour
	RefreshTokenTTL      = 30 * 24 * time.Hour
)

// AuthorizationCode is a single-use bearer token binding one client app and
// one principal. ConsumedAt is set on redemption so a code can never be
// exchanged twice, even before expiry.
type AuthorizationCode struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	Code       string     `gorm:"column:code;uniqueIndex" json:"code"`
	AppID      string     `gorm:"column:app_id;index" json:"appId"`
	UserID     string     `gorm:"column:user_id;index" json:"userId"`
	IssuedAt   time.Time  `gorm:"column:issued_at" json:"issuedAt"`
	ExpiresAt  time.Time  `gorm:"column:expires_at" json:"expiresAt"`
	ConsumedAt *time.Time `gorm:"column:consumed_at" json:"consumedAt,omitempty"`
}

func (AuthorizationCode) TableName() string { return "authorization_codes" }

// RefreshToken holds only a deterministic digest of the token value so the
// stored row can be found by recomputing the digest of a presented plaintext.
// Rotation inserts the replacement and revokes this row; revoked rows are
// kept for audit.
type RefreshToken struct {
	ID          string     `gorm:"column:id;primaryKey" json:"id"`
	AppID       string     `gorm:"column:app_id;index" json:"appId"`
	UserID      string     `gorm:"column:user_id;index" json:"userId"`
	TokenDigest string     `gorm:"column:token_digest;uniqueIndex" json:"-"`
	IssuedAt    time.Time  `gorm:"column:issued_at" json:"issuedAt"`
	ExpiresAt   time.Time  `gorm:"column:expires_at" json:"expiresAt"`
	RevokedAt   *time.Time `gorm:"column:revoked_at" json:"revokedAt,omitempty"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// StateAt derives the token's credential state at the given instant.
func (t *RefreshToken) StateAt(now time.Time) CredentialState {
	return credentialStateAt(t.RevokedAt, &t.ExpiresAt, now)
}
