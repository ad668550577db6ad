package store

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

func seedApp(t *testing.T, db *gorm.DB, ownerID string) *models.ClientApp {
	t.Helper()
	app := &models.ClientApp{
		UserID:       ownerID,
		Name:         "Test App",
		URL:          "https://app.example.com",
		Scopes:       models.ScopeList{models.ScopeOpenID, models.ScopeProfile},
		RedirectURIs: models.StringList{"https://app.example.com/callback"},
	}
	if err := NewAppStore(db).Create(context.Background(), app); err != nil {
		t.Fatalf("seed app: %v", err)
	}
	return app
}
