package store

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
)

func TestAppCreateFillsIdentity(t *testing.T) {
	db := newTestDB(t)
	app := seedApp(t, db, "owner-1")

	if len(app.ID) != 32 {
		t.Fatalf("app id length = %d, want 32", len(app.ID))
	}
	if len(app.ClientID) != 128 {
		t.Fatalf("client_id length = %d, want 128", len(app.ClientID))
	}
	if app.CreatedAt.IsZero() || app.UpdatedAt.IsZero() {
		t.Fatal("timestamps must be set")
	}

	other := seedApp(t, db, "owner-1")
	if other.ClientID == app.ClientID {
		t.Fatal("two apps got the same client_id")
	}
}

func TestAppGetByClientID(t *testing.T) {
	db := newTestDB(t)
	apps := NewAppStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")

	got, err := apps.GetByClientID(ctx, app.ClientID)
	if err != nil {
		t.Fatalf("GetByClientID: %v", err)
	}
	if got.ID != app.ID {
		t.Fatalf("got app %s, want %s", got.ID, app.ID)
	}

	if _, err := apps.GetByClientID(ctx, "no-such-client"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("unknown client_id: got %v, want ErrRecordNotFound", err)
	}
}

func TestAppUpdate(t *testing.T) {
	db := newTestDB(t)
	apps := NewAppStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")

	got, err := apps.Update(ctx, app.ID, map[string]interface{}{
		"name":        "Renamed",
		"description": "now with a description",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Renamed" || got.Description != "now with a description" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.ClientID != app.ClientID {
		t.Fatal("client_id must survive updates")
	}

	if _, err := apps.Update(ctx, "missing", map[string]interface{}{"name": "x"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("update of missing app: got %v, want ErrRecordNotFound", err)
	}
}

func TestAppListAndCountByOwner(t *testing.T) {
	db := newTestDB(t)
	apps := NewAppStore(db)
	ctx := context.Background()
	seedApp(t, db, "owner-1")
	seedApp(t, db, "owner-1")
	seedApp(t, db, "owner-2")

	list, err := apps.ListByOwner(ctx, "owner-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("listed %d apps, want 2", len(list))
	}

	count, err := apps.CountByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("CountByOwner: %v", err)
	}
	if count != 2 {
		t.Fatalf("counted %d, want 2", count)
	}
}

func TestAppDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	apps := NewAppStore(db)
	ctx := context.Background()
	app := seedApp(t, db, "owner-1")

	if err := NewSecretStore(db).Create(ctx, &models.ClientSecret{AppID: app.ID, HashedSecret: "h"}); err != nil {
		t.Fatalf("create secret: %v", err)
	}
	if _, err := NewCodeStore(db).Issue(ctx, app.ID, "user-1"); err != nil {
		t.Fatalf("issue code: %v", err)
	}
	if _, _, err := NewRefreshTokenStore(db).Issue(ctx, app.ID, "user-1"); err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}
	if err := NewUserStore(db).ConnectToApp(ctx, app.ID, "user-1"); err != nil {
		t.Fatalf("connect user: %v", err)
	}

	if err := apps.Delete(ctx, app.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := apps.GetByID(ctx, app.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("app still present after delete: %v", err)
	}
	for name, model := range map[string]interface{}{
		"client_secrets":      &models.ClientSecret{},
		"authorization_codes": &models.AuthorizationCode{},
		"refresh_tokens":      &models.RefreshToken{},
		"app_users":           &models.AppUser{},
	} {
		var count int64
		if err := db.Model(model).Where("app_id = ?", app.ID).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Fatalf("%s rows survived app deletion", name)
		}
	}

	if err := apps.Delete(ctx, app.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete: got %v, want ErrRecordNotFound", err)
	}
}
