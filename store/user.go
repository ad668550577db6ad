package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
)

// UserStore reads profile rows owned by the external authentication provider
// and maintains the app-user connection links.
type UserStore struct{ DB *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{DB: db} }

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ConnectToApp records that the principal has authorized the app. Repeat
// authorizations keep the original authorized_at.
func (s *UserStore) ConnectToApp(ctx context.Context, appID, userID string) error {
	var link models.AppUser
	return s.DB.WithContext(ctx).
		Where(models.AppUser{AppID: appID, UserID: userID}).
		Attrs(models.AppUser{AuthorizedAt: time.Now().UTC()}).
		FirstOrCreate(&link).Error
}
