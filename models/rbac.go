package models

import "time"

// Role is an opaque grouping linking permissions to principals. It carries no
// inherent meaning; today every grant creates a fresh one-permission role,
// the indirection exists so grants can later be grouped.
type Role struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Role) TableName() string { return "roles" }

// Permission is a capability token: an "entity:action" identifier scoped to
// the primary key of an arbitrary resource.
type Permission struct {
	ID         string `gorm:"column:id;primaryKey" json:"id"`
	Identifier string `gorm:"column:identifier;index" json:"identifier"`
	EntityID   string `gorm:"column:entity_id;index" json:"entityId"`
}

func (Permission) TableName() string { return "permissions" }

// RolePermission links a role to a permission.
type RolePermission struct {
	RoleID       string `gorm:"column:role_id;uniqueIndex:idx_role_permissions_pair"`
	PermissionID string `gorm:"column:permission_id;uniqueIndex:idx_role_permissions_pair"`
}

func (RolePermission) TableName() string { return "role_permissions" }

// UserRole links a principal to a role.
type UserRole struct {
	UserID string `gorm:"column:user_id;uniqueIndex:idx_user_roles_pair"`
	RoleID string `gorm:"column:role_id;uniqueIndex:idx_user_roles_pair"`
}

func (UserRole) TableName() string { return "user_roles" }
