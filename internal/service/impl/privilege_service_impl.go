package impl

import (
	"context"
	"errors"
	"log/slog"

	"iam/internal/domain"
	"iam/internal/dto"
	"iam/internal/service"

	"github.com/google/uuid"
)

type PrivilegeServiceImpl struct {
	Privileges service.PrivilegeRepository
	Roles      service.RoleRepository
}

func NewPrivilegeService(privileges service.PrivilegeRepository, roles service.RoleRepository) *PrivilegeServiceImpl {
	return &PrivilegeServiceImpl{Privileges: privileges, Roles: roles}
}

func (s *PrivilegeServiceImpl) CreatePrivilege(ctx context.Context, req dto.CreatePrivilegeRequest) (*domain.Privilege, error) {
	if _, err := s.Privileges.FindByName(ctx, req.PrivilegeName); err == nil {
		slog.Warn("privilege already exists", "name", req.PrivilegeName)
		return nil, domain.ErrDuplicatePrivilegeName
	} else if !errors.Is(err, service.ErrNotFound) {
		return nil, domain.Internal("failed to look up privilege", err)
	}

	privilege := &domain.Privilege{
		ID:             uuid.New(),
		PrivilegeName:  req.PrivilegeName,
		Description:    req.Description,
		PrivilegeGroup: req.PrivilegeGroup,
	}
	if err := s.Privileges.Create(ctx, privilege); err != nil {
		if errors.Is(err, domain.ErrDuplicatePrivilegeName) {
			return nil, err
		}
		return nil, domain.Internal("failed to create privilege", err)
	}

	slog.Info("privilege created", "privilege_id", privilege.ID, "name", privilege.PrivilegeName)
	return privilege, nil
}

func (s *PrivilegeServiceImpl) UpdatePrivilege(ctx context.Context, id domain.PrivilegeID, req dto.UpdatePrivilegeRequest) (*domain.Privilege, error) {
	privilege, err := s.findPrivilege(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PrivilegeName != nil && *req.PrivilegeName != privilege.PrivilegeName {
		if _, err := s.Privileges.FindByName(ctx, *req.PrivilegeName); err == nil {
			return nil, domain.ErrDuplicatePrivilegeName
		} else if !errors.Is(err, service.ErrNotFound) {
			return nil, domain.Internal("failed to look up privilege", err)
		}
		privilege.PrivilegeName = *req.PrivilegeName
	}
	if req.Description != nil {
		privilege.Description = *req.Description
	}
	if req.PrivilegeGroup != nil {
		privilege.PrivilegeGroup = *req.PrivilegeGroup
	}
	if err := s.Privileges.Update(ctx, privilege); err != nil {
		if errors.Is(err, domain.ErrDuplicatePrivilegeName) {
			return nil, err
		}
		return nil, domain.Internal("failed to update privilege", err)
	}

	slog.Info("privilege updated", "privilege_id", id)
	return privilege, nil
}

func (s *PrivilegeServiceImpl) DeletePrivilege(ctx context.Context, id domain.PrivilegeID) error {
	if _, err := s.findPrivilege(ctx, id); err != nil {
		return err
	}
	if err := s.Privileges.Delete(ctx, id); err != nil {
		return domain.Internal("failed to delete privilege", err)
	}
	slog.Info("privilege deleted", "privilege_id", id)
	return nil
}

func (s *PrivilegeServiceImpl) GetPrivilege(ctx context.Context, id domain.PrivilegeID) (*domain.Privilege, error) {
	return s.findPrivilege(ctx, id)
}

func (s *PrivilegeServiceImpl) GetPrivileges(ctx context.Context, q dto.ListQuery) (*dto.Paginated[domain.Privilege], error) {
	q = q.Normalize()
	privileges, total, err := s.Privileges.FindMany(ctx, q)
	if err != nil {
		return nil, domain.Internal("failed to list privileges", err)
	}
	return &dto.Paginated[domain.Privilege]{Data: privileges, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// AssignPrivilegeToRole validates both endpoints before mutating and rejects
// a duplicate active assignment rather than silently ignoring it.
func (s *PrivilegeServiceImpl) AssignPrivilegeToRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error {
	if _, err := s.Roles.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return domain.ErrRoleNotFound
		}
		return domain.Internal("failed to load role", err)
	}
	if _, err := s.findPrivilege(ctx, privilegeID); err != nil {
		return err
	}

	if err := s.Privileges.AssignToRole(ctx, roleID, privilegeID); err != nil {
		if errors.Is(err, domain.ErrPrivilegeAlreadyGranted) {
			return err
		}
		return domain.Internal("failed to assign privilege", err)
	}
	slog.Info("privilege assigned", "role_id", roleID, "privilege_id", privilegeID)
	return nil
}

// RemovePrivilegeFromRole fails with a not-found on an already-absent
// assignment; removal is an explicit contract, not auto-idempotent.
func (s *PrivilegeServiceImpl) RemovePrivilegeFromRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error {
	if err := s.Privileges.RemoveFromRole(ctx, roleID, privilegeID); err != nil {
		if errors.Is(err, domain.ErrAssignmentNotFound) {
			return err
		}
		return domain.Internal("failed to remove privilege", err)
	}
	slog.Info("privilege removed", "role_id", roleID, "privilege_id", privilegeID)
	return nil
}

func (s *PrivilegeServiceImpl) GetRolePrivileges(ctx context.Context, roleID domain.RoleID) ([]domain.Privilege, error) {
	if _, err := s.Roles.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, domain.Internal("failed to load role", err)
	}
	privileges, err := s.Privileges.FindByRoleID(ctx, roleID)
	if err != nil {
		return nil, domain.Internal("failed to load role privileges", err)
	}
	return privileges, nil
}

func (s *PrivilegeServiceImpl) HasPrivilege(ctx context.Context, roleID domain.RoleID, privilegeName string) (bool, error) {
	ok, err := s.Roles.HasPrivilege(ctx, roleID, privilegeName)
	if err != nil {
		return false, domain.Internal("failed to check privilege", err)
	}
	return ok, nil
}

func (s *PrivilegeServiceImpl) findPrivilege(ctx context.Context, id domain.PrivilegeID) (*domain.Privilege, error) {
	privilege, err := s.Privileges.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrPrivilegeNotFound
		}
		return nil, domain.Internal("failed to load privilege", err)
	}
	return privilege, nil
}
