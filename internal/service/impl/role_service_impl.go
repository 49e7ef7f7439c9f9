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

type RoleServiceImpl struct {
	Roles  service.RoleRepository
	Users  service.UserRepository
	Tokens service.TokenService
}

func NewRoleService(roles service.RoleRepository, users service.UserRepository, tokens service.TokenService) *RoleServiceImpl {
	return &RoleServiceImpl{Roles: roles, Users: users, Tokens: tokens}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, req dto.CreateRoleRequest) (*domain.Role, error) {
	if _, err := s.Roles.FindByName(ctx, req.Name); err == nil {
		slog.Warn("role already exists", "name", req.Name)
		return nil, domain.ErrDuplicateRoleName
	} else if !errors.Is(err, service.ErrNotFound) {
		return nil, domain.Internal("failed to look up role", err)
	}

	role := &domain.Role{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		RoleType:    domain.RoleTypeCustom,
	}
	if err := s.Roles.Create(ctx, role); err != nil {
		if errors.Is(err, domain.ErrDuplicateRoleName) {
			return nil, err
		}
		return nil, domain.Internal("failed to create role", err)
	}

	slog.Info("role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id domain.RoleID, req dto.UpdateRoleRequest) (*domain.Role, error) {
	role, err := s.findRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.RoleType == domain.RoleTypeSystem {
		return nil, domain.ErrSystemRoleImmutable
	}

	if req.Name != nil && *req.Name != role.Name {
		if _, err := s.Roles.FindByName(ctx, *req.Name); err == nil {
			return nil, domain.ErrDuplicateRoleName
		} else if !errors.Is(err, service.ErrNotFound) {
			return nil, domain.Internal("failed to look up role", err)
		}
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if err := s.Roles.Update(ctx, role); err != nil {
		if errors.Is(err, domain.ErrDuplicateRoleName) {
			return nil, err
		}
		return nil, domain.Internal("failed to update role", err)
	}

	slog.Info("role updated", "role_id", id)
	return role, nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id domain.RoleID) error {
	role, err := s.findRole(ctx, id)
	if err != nil {
		return err
	}
	if role.RoleType == domain.RoleTypeSystem {
		return domain.ErrSystemRoleImmutable
	}

	// A role that is some user's active authorization context cannot go away.
	inUse, err := s.Users.CountByDefaultRole(ctx, id)
	if err != nil {
		return domain.Internal("failed to count default-role users", err)
	}
	if inUse > 0 {
		return domain.ErrRoleIsDefaultForUsers
	}

	if err := s.Roles.Delete(ctx, id); err != nil {
		return domain.Internal("failed to delete role", err)
	}
	slog.Info("role deleted", "role_id", id)
	return nil
}

func (s *RoleServiceImpl) GetRole(ctx context.Context, id domain.RoleID) (*dto.RoleWithUserCount, error) {
	role, err := s.findRole(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.Roles.GetUserCount(ctx, id)
	if err != nil {
		return nil, domain.Internal("failed to count role users", err)
	}
	return &dto.RoleWithUserCount{Role: *role, UserCount: count}, nil
}

func (s *RoleServiceImpl) GetRoles(ctx context.Context, q dto.ListQuery) (*dto.Paginated[domain.Role], error) {
	q = q.Normalize()
	roles, total, err := s.Roles.FindMany(ctx, q)
	if err != nil {
		return nil, domain.Internal("failed to list roles", err)
	}
	return &dto.Paginated[domain.Role]{Data: roles, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *RoleServiceImpl) AssignRolesToUser(ctx context.Context, userID domain.UserID, roleIDs []domain.RoleID) ([]domain.Role, error) {
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal("failed to load user", err)
	}

	// Validate every role before mutating anything.
	for _, roleID := range roleIDs {
		if _, err := s.findRole(ctx, roleID); err != nil {
			return nil, err
		}
	}

	seen := make(map[domain.RoleID]struct{}, len(roleIDs))
	for _, roleID := range roleIDs {
		if _, dup := seen[roleID]; dup {
			continue
		}
		seen[roleID] = struct{}{}
		if err := s.Roles.AssignToUser(ctx, userID, roleID); err != nil {
			if errors.Is(err, domain.ErrRoleAlreadyAssigned) {
				return nil, err
			}
			return nil, domain.Internal("failed to assign role", err)
		}
	}

	_, roles, err := s.Users.FindByIDWithRoles(ctx, userID)
	if err != nil {
		return nil, domain.Internal("failed to load user roles", err)
	}
	slog.Info("roles assigned", "user_id", userID, "count", len(seen))
	return roles, nil
}

func (s *RoleServiceImpl) RemoveRoleFromUser(ctx context.Context, userID domain.UserID, roleID domain.RoleID) error {
	user, _, err := s.Users.FindByIDWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return domain.Internal("failed to load user", err)
	}

	if user.DefaultRoleID != nil && *user.DefaultRoleID == roleID {
		return domain.ErrDefaultRoleRemoval
	}

	if err := s.Roles.RemoveFromUser(ctx, userID, roleID); err != nil {
		if errors.Is(err, domain.ErrAssignmentNotFound) {
			return err
		}
		return domain.Internal("failed to remove role", err)
	}
	slog.Info("role removed", "user_id", userID, "role_id", roleID)
	return nil
}

// SwitchActiveRole changes the user's authorization context. The user must
// already hold the role as a membership; the new access token reflects the
// new active role.
func (s *RoleServiceImpl) SwitchActiveRole(ctx context.Context, userID domain.UserID, roleID domain.RoleID) (*dto.SwitchRoleResponse, error) {
	user, roles, err := s.Users.FindByIDWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal("failed to load user", err)
	}

	held := false
	for _, r := range roles {
		if r.ID == roleID {
			held = true
			break
		}
	}
	if !held {
		return nil, domain.ErrUserMissingRole
	}

	if err := s.Users.SetDefaultRole(ctx, userID, roleID); err != nil {
		return nil, domain.Internal("failed to set default role", err)
	}
	user.DefaultRoleID = &roleID

	pair, err := s.Tokens.GenerateTokens(ctx, userID)
	if err != nil {
		return nil, err
	}

	slog.Info("active role switched", "user_id", userID, "role_id", roleID)
	return &dto.SwitchRoleResponse{User: dto.NewUserView(user), AccessToken: pair.AccessToken}, nil
}

func (s *RoleServiceImpl) GetUserRoles(ctx context.Context, userID domain.UserID) ([]domain.Role, error) {
	_, roles, err := s.Users.FindByIDWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal("failed to load user roles", err)
	}
	return roles, nil
}

func (s *RoleServiceImpl) ValidateUserRole(ctx context.Context, userID domain.UserID, roleID domain.RoleID) (bool, error) {
	_, roles, err := s.Users.FindByIDWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return false, nil
		}
		return false, domain.Internal("failed to load user roles", err)
	}
	for _, r := range roles {
		if r.ID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (s *RoleServiceImpl) findRole(ctx context.Context, id domain.RoleID) (*domain.Role, error) {
	role, err := s.Roles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, domain.Internal("failed to load role", err)
	}
	return role, nil
}
