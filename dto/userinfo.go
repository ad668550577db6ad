package dto

import "github.com/nexauth/nexauth/models"

// UserInfoResponse is the public profile returned by /oauth/userinfo.
type UserInfoResponse struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture,omitempty"`
	UpdatedAt     int64  `json:"updated_at"`
}

// FromUser maps a profile row to the userinfo claim set.
func FromUser(u *models.User) UserInfoResponse {
	return UserInfoResponse{
		Sub:           u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Picture:       u.Picture,
		UpdatedAt:     u.UpdatedAt.UnixMilli(),
	}
}
