package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
	"github.com/nexauth/nexauth/secrets"
)

type SecretStore struct{ DB *gorm.DB }

func NewSecretStore(db *gorm.DB) *SecretStore { return &SecretStore{DB: db} }

// Create stores a new hashed client secret for an app.
func (s *SecretStore) Create(ctx context.Context, secret *models.ClientSecret) error {
	secret.ID = models.NexID()
	secret.CreatedAt = time.Now().UTC()
	return s.DB.WithContext(ctx).Create(secret).Error
}

func (s *SecretStore) GetByID(ctx context.Context, id string) (*models.ClientSecret, error) {
	var secret models.ClientSecret
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&secret).Error; err != nil {
		return nil, err
	}
	return &secret, nil
}

// ListByApp returns every secret row for the app, newest first, including
// revoked and expired ones.
func (s *SecretStore) ListByApp(ctx context.Context, appID string) ([]models.ClientSecret, error) {
	var out []models.ClientSecret
	err := s.DB.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// Revoke soft-revokes a secret. Revocation is monotonic: an already-revoked
// secret keeps its original revoked_at.
func (s *SecretStore) Revoke(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).
		Model(&models.ClientSecret{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", time.Now().UTC()).Error
}

// FindActive returns the app's active secret matching the presented
// plaintext, verified by recomputation against each stored hash. Returns
// gorm.ErrRecordNotFound when no active secret matches.
func (s *SecretStore) FindActive(ctx context.Context, appID, plaintext string) (*models.ClientSecret, error) {
	now := time.Now().UTC()
	var candidates []models.ClientSecret
	err := s.DB.WithContext(ctx).
		Where("app_id = ? AND revoked_at IS NULL AND (expires_at IS NULL OR expires_at > ?)", appID, now).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if secrets.Verify(plaintext, candidates[i].HashedSecret) {
			return &candidates[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
