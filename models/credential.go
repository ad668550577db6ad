package models

import "time"

// CredentialState is the derived lifecycle state of a revocable, expirable
// credential (client secret, refresh token). Revocation wins over expiry and
// is monotonic: once revoked_at is set it is never cleared.
type CredentialState int

const (
	CredentialActive CredentialState = iota
	CredentialRevoked
	CredentialExpired
)

func (s CredentialState) String() string {
	switch s {
	case CredentialActive:
		return "active"
	case CredentialRevoked:
		return "revoked"
	case CredentialExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// credentialStateAt is the single usability predicate shared by every lookup:
// a credential is active iff revokedAt is nil and (expiresAt is nil or in the
// future).
func credentialStateAt(revokedAt, expiresAt *time.Time, now time.Time) CredentialState {
	if revokedAt != nil {
		return CredentialRevoked
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return CredentialExpired
	}
	return CredentialActive
}
