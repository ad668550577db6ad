package models

import "time"

// User is the profile record owned by the external authentication provider.
// This core only reads it, for /userinfo and connected-user listings.
type User struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	Name          string    `gorm:"column:name" json:"name"`
	Email         string    `gorm:"column:email;index" json:"email"`
	EmailVerified bool      `gorm:"column:email_verified" json:"emailVerified"`
	Picture       string    `gorm:"column:picture" json:"picture,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// AuthenticatedPrincipal is the immutable identity performing an action,
// resolved by the surrounding authentication layer and passed by handle
// through call chains.
type AuthenticatedPrincipal struct {
	ID string
}

// All returns every model for schema setup (tests use gorm AutoMigrate;
// production relies on the goose migrations).
func All() []interface{} {
	return []interface{}{
		&User{},
		&ClientApp{},
		&ClientSecret{},
		&AuthorizationCode{},
		&RefreshToken{},
		&AppUser{},
		&Role{},
		&Permission{},
		&RolePermission{},
		&UserRole{},
	}
}
