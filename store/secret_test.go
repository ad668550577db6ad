package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
	"github.com/nexauth/nexauth/secrets"
)

func seedSecret(t *testing.T, db *gorm.DB, appID, plaintext string) *models.ClientSecret {
	t.Helper()
	hashed, err := secrets.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	secret := &models.ClientSecret{AppID: appID, HashedSecret: hashed}
	if err := NewSecretStore(db).Create(context.Background(), secret); err != nil {
		t.Fatalf("create secret: %v", err)
	}
	return secret
}

func TestFindActiveVerifiesByRecomputation(t *testing.T) {
	db := newTestDB(t)
	store := NewSecretStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")
	seedSecret(t, db, app.ID, "the-real-secret")

	got, err := store.FindActive(ctx, app.ID, "the-real-secret")
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if got == nil {
		t.Fatal("expected a matching secret")
	}

	if _, err := store.FindActive(ctx, app.ID, "wrong-secret"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("wrong plaintext: got %v, want ErrRecordNotFound", err)
	}
}

func TestFindActiveAcceptsAnyActiveSecret(t *testing.T) {
	db := newTestDB(t)
	store := NewSecretStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")
	seedSecret(t, db, app.ID, "old-secret")
	seedSecret(t, db, app.ID, "new-secret")

	// rotation keeps old secrets working until explicitly revoked
	for _, plaintext := range []string{"old-secret", "new-secret"} {
		if _, err := store.FindActive(ctx, app.ID, plaintext); err != nil {
			t.Fatalf("FindActive(%q): %v", plaintext, err)
		}
	}
}

func TestFindActiveSkipsRevokedAndExpired(t *testing.T) {
	db := newTestDB(t)
	store := NewSecretStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")

	revoked := seedSecret(t, db, app.ID, "revoked-secret")
	if err := store.Revoke(ctx, revoked.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := store.FindActive(ctx, app.ID, "revoked-secret"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("revoked secret matched: %v", err)
	}

	expired := seedSecret(t, db, app.ID, "expired-secret")
	past := time.Now().UTC().Add(-time.Hour)
	if err := db.Model(expired).Update("expires_at", past).Error; err != nil {
		t.Fatalf("expire secret: %v", err)
	}
	if _, err := store.FindActive(ctx, app.ID, "expired-secret"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expired secret matched: %v", err)
	}
}

func TestRevokeIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	store := NewSecretStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")
	secret := seedSecret(t, db, app.ID, "s")

	if err := store.Revoke(ctx, secret.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	first, err := store.GetByID(ctx, secret.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if first.RevokedAt == nil {
		t.Fatal("revoked_at not set")
	}

	time.Sleep(5 * time.Millisecond)
	if err := store.Revoke(ctx, secret.ID); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	second, err := store.GetByID(ctx, secret.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !second.RevokedAt.Equal(*first.RevokedAt) {
		t.Fatal("second revoke moved revoked_at")
	}
}

func TestSecretStateAt(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name      string
		revokedAt *time.Time
		expiresAt *time.Time
		want      models.CredentialState
	}{
		{"fresh", nil, nil, models.CredentialActive},
		{"unexpired", nil, &future, models.CredentialActive},
		{"expired", nil, &past, models.CredentialExpired},
		{"revoked", &past, nil, models.CredentialRevoked},
		{"revoked beats expired", &past, &past, models.CredentialRevoked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			secret := models.ClientSecret{RevokedAt: tc.revokedAt, ExpiresAt: tc.expiresAt}
			if got := secret.StateAt(now); got != tc.want {
				t.Fatalf("StateAt = %v, want %v", got, tc.want)
			}
		})
	}
}
