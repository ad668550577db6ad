package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
)

func TestRefreshIssueStoresOnlyDigest(t *testing.T) {
	db := newTestDB(t)
	tokens := NewRefreshTokenStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")

	plaintext, row, err := tokens.Issue(ctx, app.ID, "user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(plaintext) != 128 {
		t.Fatalf("plaintext length = %d, want 128", len(plaintext))
	}
	if row.TokenDigest == plaintext {
		t.Fatal("stored value must not be the plaintext")
	}
	if row.StateAt(time.Now()) != models.CredentialActive {
		t.Fatal("fresh token must be active")
	}
}

func TestRefreshFindByPlaintext(t *testing.T) {
	db := newTestDB(t)
	tokens := NewRefreshTokenStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")

	plaintext, row, err := tokens.Issue(ctx, app.ID, "user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := tokens.Find(ctx, plaintext)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.ID != row.ID {
		t.Fatalf("found %s, want %s", got.ID, row.ID)
	}

	if _, err := tokens.Find(ctx, "never-issued"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("unknown plaintext: got %v, want ErrRecordNotFound", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	db := newTestDB(t)
	tokens := NewRefreshTokenStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")

	oldPlaintext, oldRow, err := tokens.Issue(ctx, app.ID, "user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	newPlaintext, newRow, err := tokens.Rotate(ctx, oldRow)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if newPlaintext == oldPlaintext {
		t.Fatal("rotation returned the same plaintext")
	}
	if newRow.AppID != oldRow.AppID || newRow.UserID != oldRow.UserID {
		t.Fatal("rotation must preserve the app/user binding")
	}

	stale, err := tokens.Find(ctx, oldPlaintext)
	if err != nil {
		t.Fatalf("Find old: %v", err)
	}
	if stale.StateAt(time.Now()) != models.CredentialRevoked {
		t.Fatal("old token must be revoked after rotation")
	}
	fresh, err := tokens.Find(ctx, newPlaintext)
	if err != nil {
		t.Fatalf("Find new: %v", err)
	}
	if fresh.StateAt(time.Now()) != models.CredentialActive {
		t.Fatal("new token must be active")
	}

	// the old row is already revoked, so a second rotation loses the race
	if _, _, err := tokens.Rotate(ctx, oldRow); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("repeat rotation: got %v, want ErrRecordNotFound", err)
	}
}

func TestRevokeForUserScoping(t *testing.T) {
	db := newTestDB(t)
	tokens := NewRefreshTokenStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")

	plaintext, _, err := tokens.Issue(ctx, app.ID, "user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// correct value, wrong principal
	if err := tokens.RevokeForUser(ctx, plaintext, "user-2"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("cross-user revoke: got %v, want ErrRecordNotFound", err)
	}

	if err := tokens.RevokeForUser(ctx, plaintext, "user-1"); err != nil {
		t.Fatalf("RevokeForUser: %v", err)
	}
	row, err := tokens.Find(ctx, plaintext)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if row.StateAt(time.Now()) != models.CredentialRevoked {
		t.Fatal("token must be revoked")
	}
}
