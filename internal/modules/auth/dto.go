package auth

import (
	"time"

	"assignportal/internal/domain"
)

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Organization *string `json:"organization" validate:"omitempty,max=120"`
	IDNumber     *string `json:"id_number" validate:"omitempty,max=64"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Avatar       *string `json:"avatar" validate:"omitempty,max=255"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type UserResponse struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Role         domain.UserRole `json:"role"`
	Organization string          `json:"organization,omitempty"`
	IDNumber     string          `json:"id_number,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Email        string          `json:"email,omitempty"`
	Avatar       string          `json:"avatar,omitempty"`
	FirstLogin   bool            `json:"first_login"`
	CreatedAt    time.Time       `json:"created_at"`
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Role:         u.Role,
		Organization: u.Organization,
		IDNumber:     u.IDNumber,
		Phone:        u.Phone,
		Email:        u.Email,
		Avatar:       u.Avatar,
		FirstLogin:   u.FirstLogin,
		CreatedAt:    u.CreatedAt,
	}
}
