// Package store holds the per-entity persistence layer: thin gorm stores
// with multi-row writes wrapped in transactions.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
	"github.com/nexauth/nexauth/secrets"
)

// clientIDLength is the size of the public client identifier.
const clientIDLength = 128

type AppStore struct{ DB *gorm.DB }

func NewAppStore(db *gorm.DB) *AppStore { return &AppStore{DB: db} }

// Create inserts a new client application, filling id, public client_id and
// timestamps.
func (s *AppStore) Create(ctx context.Context, app *models.ClientApp) error {
	now := time.Now().UTC()
	app.ID = models.NexID()
	app.ClientID = secrets.RandString(clientIDLength)
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Scopes == nil {
		app.Scopes = models.ScopeList{}
	}
	if app.RedirectURIs == nil {
		app.RedirectURIs = models.StringList{}
	}
	return s.DB.WithContext(ctx).Create(app).Error
}

func (s *AppStore) GetByID(ctx context.Context, id string) (*models.ClientApp, error) {
	var app models.ClientApp
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByClientID resolves an app by its public client identifier.
func (s *AppStore) GetByClientID(ctx context.Context, clientID string) (*models.ClientApp, error) {
	var app models.ClientApp
	if err := s.DB.WithContext(ctx).Where("client_id = ?", clientID).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// Update applies a partial update limited to the mutable display/settings
// fields and returns the updated row. Immutable fields (client_id, user_id)
// are never part of the updates map.
func (s *AppStore) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.ClientApp, error) {
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		res := s.DB.WithContext(ctx).Model(&models.ClientApp{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return s.GetByID(ctx, id)
}

// ListByOwner returns the owner's apps, paginated.
func (s *AppStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.ClientApp, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	var apps []models.ClientApp
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&apps).Error
	return apps, err
}

func (s *AppStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.ClientApp{}).Where("user_id = ?", ownerID).Count(&n).Error
	return n, err
}

// Delete removes the app and everything hanging off it: secrets, codes,
// refresh tokens and app-user links, all-or-nothing. The explicit child
// deletes mirror the migrations' ON DELETE CASCADE for datastores without
// enforced foreign keys.
func (s *AppStore) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.ClientSecret{},
			&models.AuthorizationCode{},
			&models.RefreshToken{},
			&models.AppUser{},
		} {
			if err := tx.Where("app_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.ClientApp{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListConnectedUsers returns the profiles of principals who have authorized
// the app.
func (s *AppStore) ListConnectedUsers(ctx context.Context, appID string) ([]models.User, error) {
	var users []models.User
	err := s.DB.WithContext(ctx).
		Table("users u").
		Select("u.*").
		Joins("JOIN app_users au ON au.user_id = u.id").
		Where("au.app_id = ?", appID).
		Order("au.authorized_at ASC").
		Scan(&users).Error
	return users, err
}
