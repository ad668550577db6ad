// Package seed provisions demo data for local development: a signed-in
// principal, a registered client app with a known secret, and the ownership
// grants the registry would have created.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
	"github.com/nexauth/nexauth/permission"
	"github.com/nexauth/nexauth/secrets"
	"github.com/nexauth/nexauth/store"
)

// Demo credentials printed after seeding. The secret is fixed so local
// clients can be configured once.
const (
	DemoUserID       = "00000000000000000000000000000001"
	DemoClientSecret = "demo-client-secret"
	demoRedirectURI  = "http://localhost:9098/callback"
)

// Run creates the demo principal and app if they do not exist yet. Safe to
// run repeatedly.
func Run(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	user := &models.User{
		ID:            DemoUserID,
		Name:          "Demo Developer",
		Email:         "demo@nexauth.local",
		EmailVerified: true,
	}
	if err := db.WithContext(ctx).FirstOrCreate(user, models.User{ID: DemoUserID}).Error; err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	var existing models.ClientApp
	err := db.WithContext(ctx).Where("user_id = ? AND name = ?", DemoUserID, "Demo App").First(&existing).Error
	if err == nil {
		log.Info("demo app already seeded", zap.String("client_id", existing.ClientID))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check demo app: %w", err)
	}

	hashed, err := secrets.Hash(DemoClientSecret)
	if err != nil {
		return fmt.Errorf("hash demo secret: %w", err)
	}

	app := &models.ClientApp{
		UserID:       DemoUserID,
		Name:         "Demo App",
		Description:  "Seeded client application for local development",
		URL:          "http://localhost:9098",
		Scopes:       models.ScopeList{models.ScopeOpenID, models.ScopeProfile, models.ScopeEmail, models.ScopeOfflineAccess},
		RedirectURIs: models.StringList{demoRedirectURI},
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.NewAppStore(tx).Create(ctx, app); err != nil {
			return err
		}
		secret := &models.ClientSecret{AppID: app.ID, HashedSecret: hashed}
		if err := store.NewSecretStore(tx).Create(ctx, secret); err != nil {
			return err
		}
		perms := permission.NewService(tx)
		if _, err := perms.CreatePermission(ctx, DemoUserID, permission.AppAll, app.ID); err != nil {
			return err
		}
		_, err := perms.CreatePermission(ctx, DemoUserID, permission.SecretAll, secret.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("seed demo app: %w", err)
	}

	log.Info("seeded demo app",
		zap.String("client_id", app.ClientID),
		zap.String("client_secret", DemoClientSecret),
		zap.String("redirect_uri", demoRedirectURI))
	return nil
}
