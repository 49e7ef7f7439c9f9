package service

import (
	"context"

	"iam/internal/domain"
	"iam/internal/dto"
)

// AuthService orchestrates the account lifecycle: registration, login,
// session refresh, logout, verification and password management, plus the
// privilege check used as the single authorization decision point.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	// Login does not require prior verification; verification gates specific
	// actions, not login itself.
	Login(ctx context.Context, identifier, password string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string, userID domain.UserID) error
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	VerifyAccount(ctx context.Context, userID domain.UserID, code string, channel domain.VerificationChannel) (*domain.User, error)
	ResetPassword(ctx context.Context, userID domain.UserID, code, newPassword string) error
	ChangePassword(ctx context.Context, userID domain.UserID, oldPassword, newPassword string) error
	CheckPrivilege(ctx context.Context, roleID domain.RoleID, actions []string) (dto.PrivilegeCheck, error)
}
