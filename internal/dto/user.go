package dto

import (
	"strconv"
	"time"

	"worklog-auth/internal/domain"
)

type UserResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	IsVerified bool       `json:"isVerified"`
	MfaEnabled bool       `json:"mfaEnabled"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         strconv.FormatUint(u.ID, 10),
		Email:      u.Email,
		IsVerified: u.IsVerified,
		MfaEnabled: u.MfaEnabled,
		CreatedAt:  u.CreatedAt,
		LastLogin:  u.LastLogin,
	}
}

type DeleteUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type DeleteUserResponse struct {
	Deleted map[string]int64 `json:"deleted"`
}
