package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
	"github.com/nexauth/nexauth/secrets"
)

// codeLength is the size of the random numeric authorization code.
const codeLength = 64

type CodeStore struct{ DB *gorm.DB }

func NewCodeStore(db *gorm.DB) *CodeStore { return &CodeStore{DB: db} }

// Issue mints a fresh authorization code bound to the app and principal,
// valid for the fixed one-hour window.
func (s *CodeStore) Issue(ctx context.Context, appID, userID string) (*models.AuthorizationCode, error) {
	now := time.Now().UTC()
	code := &models.AuthorizationCode{
		ID:        models.NexID(),
		Code:      secrets.RandNumericString(codeLength),
		AppID:     appID,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(models.AuthorizationCodeTTL),
	}
	if err := s.DB.WithContext(ctx).Create(code).Error; err != nil {
		return nil, err
	}
	return code, nil
}

// Redeem consumes a code for the given app. The conditional update is the
// single-use gate: of two concurrent redeemers exactly one sees a row
// updated, the other gets gorm.ErrRecordNotFound. Expired, already-consumed
// and unknown codes are indistinguishable to the caller.
func (s *CodeStore) Redeem(ctx context.Context, code, appID string) (*models.AuthorizationCode, error) {
	now := time.Now().UTC()
	res := s.DB.WithContext(ctx).
		Model(&models.AuthorizationCode{}).
		Where("code = ? AND app_id = ? AND consumed_at IS NULL AND expires_at > ?", code, appID, now).
		Update("consumed_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var row models.AuthorizationCode
	if err := s.DB.WithContext(ctx).Where("code = ? AND app_id = ?", code, appID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
