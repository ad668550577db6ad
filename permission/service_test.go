package permission

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nexauth/nexauth/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestIsAllowedWithoutGrants(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	ok, err := svc.IsAllowed(ctx, "user-1", []Identifier{AppAll}, "app-1")
	if err != nil {
		t.Fatalf("IsAllowed: %v", err)
	}
	if ok {
		t.Fatal("user with no grants must not be allowed")
	}
}

func TestIsAllowedEmptyInputs(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	if ok, err := svc.IsAllowed(ctx, "", []Identifier{AppAll}, "app-1"); err != nil || ok {
		t.Fatalf("empty user: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.IsAllowed(ctx, "user-1", nil, "app-1"); err != nil || ok {
		t.Fatalf("empty identifiers: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.IsAllowed(ctx, "user-1", []Identifier{AppAll}, ""); err != nil || ok {
		t.Fatalf("empty entity: ok=%v err=%v", ok, err)
	}
}

func TestCreatePermissionGrantsAccess(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	if _, err := svc.CreatePermission(ctx, "user-1", AppAll, "app-1"); err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}

	ok, err := svc.IsAllowed(ctx, "user-1", []Identifier{AppAll}, "app-1")
	if err != nil {
		t.Fatalf("IsAllowed: %v", err)
	}
	if !ok {
		t.Fatal("granted user must be allowed")
	}

	// any-of semantics: AppAll satisfies a check listing AppAll or AppUpdate
	ok, err = svc.IsAllowed(ctx, "user-1", []Identifier{AppAll, AppUpdate}, "app-1")
	if err != nil {
		t.Fatalf("IsAllowed: %v", err)
	}
	if !ok {
		t.Fatal("any-of check must pass when one identifier is granted")
	}
}

func TestGrantIsEntityScoped(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	if _, err := svc.CreatePermission(ctx, "user-1", AppAll, "app-1"); err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}

	if ok, _ := svc.IsAllowed(ctx, "user-1", []Identifier{AppAll}, "app-2"); ok {
		t.Fatal("grant on app-1 must not cover app-2")
	}
	if ok, _ := svc.IsAllowed(ctx, "user-2", []Identifier{AppAll}, "app-1"); ok {
		t.Fatal("grant for user-1 must not cover user-2")
	}
	if ok, _ := svc.IsAllowed(ctx, "user-1", []Identifier{AppUpdate}, "app-1"); ok {
		t.Fatal("grant of app:all must not satisfy a check for app:update")
	}
}

func TestCreatePermissionIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first, err := svc.CreatePermission(ctx, "user-1", AppAll, "app-1")
	if err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}
	second, err := svc.CreatePermission(ctx, "user-1", AppAll, "app-1")
	if err != nil {
		t.Fatalf("repeat CreatePermission: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("repeat grant created a new permission: %s vs %s", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&models.Permission{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 permission row, got %d", count)
	}
}

func TestIdentifierParse(t *testing.T) {
	id, err := Parse("app:update")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id != AppUpdate {
		t.Fatalf("Parse = %q, want %q", id, AppUpdate)
	}
	if _, err := Parse("nonsense"); err == nil {
		t.Fatal("Parse must reject a string without an action separator")
	}
}
