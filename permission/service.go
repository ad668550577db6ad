package permission

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nexauth/nexauth/models"
)

// Service exposes the narrow permission interface: IsAllowed and
// CreatePermission. The role/permission join structure never leaves this
// package.
type Service struct{ DB *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{DB: db} }

// WithTx returns a Service bound to an open transaction so grants can join a
// caller's atomic unit.
func (s *Service) WithTx(tx *gorm.DB) *Service { return &Service{DB: tx} }

// IsAllowed reports whether the principal holds, through any of their roles,
// a permission whose identifier is in the required set and whose entity id
// matches. No match — including entities with no permission rows at all — is
// false, never an error.
func (s *Service) IsAllowed(ctx context.Context, userID string, required []Identifier, entityID string) (bool, error) {
	if userID == "" || len(required) == 0 || entityID == "" {
		return false, nil
	}
	var n int64
	err := s.DB.WithContext(ctx).
		Table("permissions p").
		Joins("JOIN role_permissions rp ON rp.permission_id = p.id").
		Joins("JOIN user_roles ur ON ur.role_id = rp.role_id").
		Where("ur.user_id = ? AND p.entity_id = ? AND p.identifier IN ?", userID, entityID, identifierStrings(required)).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreatePermission grants the principal a capability on an entity. It is
// idempotent on (principal, identifier, entityId): an equivalent existing
// grant is returned as-is. Otherwise a fresh Role, Permission, UserRole and
// RolePermission are created in that order as one transaction.
func (s *Service) CreatePermission(ctx context.Context, userID string, identifier Identifier, entityID string) (*models.Permission, error) {
	var out *models.Permission
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Permission
		err := tx.Table("permissions p").
			Select("p.*").
			Joins("JOIN role_permissions rp ON rp.permission_id = p.id").
			Joins("JOIN user_roles ur ON ur.role_id = rp.role_id").
			Where("ur.user_id = ? AND p.identifier = ? AND p.entity_id = ?", userID, identifier.String(), entityID).
			Limit(1).
			Scan(&existing).Error
		if err != nil {
			return err
		}
		if existing.ID != "" {
			out = &existing
			return nil
		}

		now := time.Now().UTC()
		role := models.Role{ID: models.NexID(), CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		perm := models.Permission{ID: models.NexID(), Identifier: identifier.String(), EntityID: entityID}
		if err := tx.Create(&perm).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.UserRole{UserID: userID, RoleID: role.ID}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error; err != nil {
			return err
		}
		out = &perm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
