package service

import (
	"context"

	"iam/internal/domain"
	"iam/internal/dto"
)

type RoleService interface {
	CreateRole(ctx context.Context, req dto.CreateRoleRequest) (*domain.Role, error)
	UpdateRole(ctx context.Context, id domain.RoleID, req dto.UpdateRoleRequest) (*domain.Role, error)
	DeleteRole(ctx context.Context, id domain.RoleID) error
	GetRole(ctx context.Context, id domain.RoleID) (*dto.RoleWithUserCount, error)
	GetRoles(ctx context.Context, q dto.ListQuery) (*dto.Paginated[domain.Role], error)

	AssignRolesToUser(ctx context.Context, userID domain.UserID, roleIDs []domain.RoleID) ([]domain.Role, error)
	RemoveRoleFromUser(ctx context.Context, userID domain.UserID, roleID domain.RoleID) error
	SwitchActiveRole(ctx context.Context, userID domain.UserID, roleID domain.RoleID) (*dto.SwitchRoleResponse, error)
	GetUserRoles(ctx context.Context, userID domain.UserID) ([]domain.Role, error)
	ValidateUserRole(ctx context.Context, userID domain.UserID, roleID domain.RoleID) (bool, error)
}
