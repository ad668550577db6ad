package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
	"github.com/nexauth/nexauth/secrets"
)

// refreshTokenLength is the size of the plaintext refresh-token value.
const refreshTokenLength = 128

type RefreshTokenStore struct{ DB *gorm.DB }

func NewRefreshTokenStore(db *gorm.DB) *RefreshTokenStore { return &RefreshTokenStore{DB: db} }

// Issue mints a refresh token for the app/principal pair. The returned
// plaintext is handed to the client once; only its digest is stored.
func (s *RefreshTokenStore) Issue(ctx context.Context, appID, userID string) (string, *models.RefreshToken, error) {
	now := time.Now().UTC()
	plaintext := secrets.RandString(refreshTokenLength)
	row := &models.RefreshToken{
		ID:          models.NexID(),
		AppID:       appID,
		UserID:      userID,
		TokenDigest: secrets.Digest(plaintext),
		IssuedAt:    now,
		ExpiresAt:   now.Add(models.RefreshTokenTTL),
	}
	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		return "", nil, err
	}
	return plaintext, row, nil
}

// Find looks up the stored row for a presented plaintext by recomputing its
// digest. State (revoked/expired) is the caller's check via StateAt.
func (s *RefreshTokenStore) Find(ctx context.Context, plaintext string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := s.DB.WithContext(ctx).Where("token_digest = ?", secrets.Digest(plaintext)).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Rotate issues a replacement token and revokes old in one transaction. The
// conditional revoke makes rotation single-winner: if old was already revoked
// by a concurrent redemption the whole rotation fails and rolls back.
func (s *RefreshTokenStore) Rotate(ctx context.Context, old *models.RefreshToken) (string, *models.RefreshToken, error) {
	var plaintext string
	var fresh *models.RefreshToken
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := NewRefreshTokenStore(tx)
		var err error
		plaintext, fresh, err = txStore.Issue(ctx, old.AppID, old.UserID)
		if err != nil {
			return err
		}
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", old.ID).
			Update("revoked_at", time.Now().UTC())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return plaintext, fresh, nil
}

// RevokeForUser revokes the token matching the plaintext, scoped to the
// principal's id so one principal cannot revoke another's token even with
// the correct value. Returns gorm.ErrRecordNotFound when no such row exists.
func (s *RefreshTokenStore) RevokeForUser(ctx context.Context, plaintext, userID string) error {
	var row models.RefreshToken
	err := s.DB.WithContext(ctx).
		Where("token_digest = ? AND user_id = ?", secrets.Digest(plaintext), userID).
		First(&row).Error
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", row.ID).
		Update("revoked_at", time.Now().UTC()).Error
}
