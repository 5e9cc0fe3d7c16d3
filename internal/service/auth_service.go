package service

import (
	"context"

	"worklog-auth/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResponse, error)
	DeleteAccount(ctx context.Context, r dto.DeleteUserRequest) (map[string]int64, error)
}
