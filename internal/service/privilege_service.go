package service

import (
	"context"

	"iam/internal/domain"
	"iam/internal/dto"
)

type PrivilegeService interface {
	CreatePrivilege(ctx context.Context, req dto.CreatePrivilegeRequest) (*domain.Privilege, error)
	UpdatePrivilege(ctx context.Context, id domain.PrivilegeID, req dto.UpdatePrivilegeRequest) (*domain.Privilege, error)
	DeletePrivilege(ctx context.Context, id domain.PrivilegeID) error
	GetPrivilege(ctx context.Context, id domain.PrivilegeID) (*domain.Privilege, error)
	GetPrivileges(ctx context.Context, q dto.ListQuery) (*dto.Paginated[domain.Privilege], error)

	AssignPrivilegeToRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error
	RemovePrivilegeFromRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error
	GetRolePrivileges(ctx context.Context, roleID domain.RoleID) ([]domain.Privilege, error)
	HasPrivilege(ctx context.Context, roleID domain.RoleID, privilegeName string) (bool, error)
}
