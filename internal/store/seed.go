package store

import (
	"context"
	"errors"
	"log/slog"

	"iam/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var seedPrivileges = []domain.Privilege{
	{PrivilegeName: "user:create", Description: "Can create users", PrivilegeGroup: domain.GroupUserManagement},
	{PrivilegeName: "user:read", Description: "Can view user details", PrivilegeGroup: domain.GroupUserManagement},
	{PrivilegeName: "user:update", Description: "Can update user details", PrivilegeGroup: domain.GroupUserManagement},
	{PrivilegeName: "user:delete", Description: "Can delete users", PrivilegeGroup: domain.GroupUserManagement},
	{PrivilegeName: "profile:read", Description: "Can view profiles", PrivilegeGroup: domain.GroupProfile},
	{PrivilegeName: "profile:update", Description: "Can update profiles", PrivilegeGroup: domain.GroupProfile},
	{PrivilegeName: "role:create", Description: "Can create roles", PrivilegeGroup: domain.GroupRoleManagement},
	{PrivilegeName: "role:read", Description: "Can view roles", PrivilegeGroup: domain.GroupRoleManagement},
	{PrivilegeName: "role:update", Description: "Can update roles", PrivilegeGroup: domain.GroupRoleManagement},
	{PrivilegeName: "role:delete", Description: "Can delete roles", PrivilegeGroup: domain.GroupRoleManagement},
	{PrivilegeName: "settings:read", Description: "Can view settings", PrivilegeGroup: domain.GroupSettings},
	{PrivilegeName: "settings:update", Description: "Can update settings", PrivilegeGroup: domain.GroupSettings},
	{PrivilegeName: "system:manage", Description: "Can manage system configurations", PrivilegeGroup: domain.GroupSystem},
}

var seedRoles = []domain.Role{
	{Name: domain.RoleSuperAdmin, Description: "Full system access", RoleType: domain.RoleTypeSystem},
	{Name: domain.RoleAdmin, Description: "Administrative access with limitations", RoleType: domain.RoleTypeSystem},
	{Name: domain.RoleUser, Description: "Standard user access", RoleType: domain.RoleTypeSystem, IsDefault: true},
}

// seedRolePrivileges maps role name to granted privilege names. SUPER_ADMIN
// gets the full catalog and is handled separately.
var seedRolePrivileges = map[string][]string{
	domain.RoleAdmin: {
		"user:read", "user:update",
		"profile:read", "profile:update",
		"role:read",
		"settings:read",
	},
	domain.RoleUser: {
		"profile:read", "profile:update",
	},
}

// Seed upserts the privilege catalog and the three system roles, then
// rewrites each seeded role's grants to match the catalog exactly. Running it
// again is a no-op apart from re-aligning drifted grants.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byName := make(map[string]domain.PrivilegeID, len(seedPrivileges))
		for _, p := range seedPrivileges {
			var existing domain.Privilege
			err := tx.Where("privilege_name = ?", p.PrivilegeName).First(&existing).Error
			switch {
			case err == nil:
				existing.Description = p.Description
				existing.PrivilegeGroup = p.PrivilegeGroup
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				byName[p.PrivilegeName] = existing.ID
			case errors.Is(err, gorm.ErrRecordNotFound):
				p.ID = uuid.New()
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
				byName[p.PrivilegeName] = p.ID
			default:
				return err
			}
		}

		allNames := make([]string, 0, len(seedPrivileges))
		for _, p := range seedPrivileges {
			allNames = append(allNames, p.PrivilegeName)
		}

		for _, r := range seedRoles {
			var role domain.Role
			err := tx.Where("name = ?", r.Name).First(&role).Error
			switch {
			case err == nil:
				role.Description = r.Description
				role.RoleType = r.RoleType
				role.IsDefault = r.IsDefault
				if err := tx.Save(&role).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				role = r
				role.ID = uuid.New()
				if err := tx.Create(&role).Error; err != nil {
					return err
				}
			default:
				return err
			}

			grants, ok := seedRolePrivileges[role.Name]
			if !ok {
				grants = allNames
			}

			if err := tx.Where("role_id = ?", role.ID).Delete(&domain.RolePrivilege{}).Error; err != nil {
				return err
			}
			for _, name := range grants {
				privilegeID, ok := byName[name]
				if !ok {
					continue
				}
				edge := domain.RolePrivilege{RoleID: role.ID, PrivilegeID: privilegeID}
				if err := tx.Create(&edge).Error; err != nil {
					return err
				}
			}
			slog.Info("seeded role", "name", role.Name, "privileges", len(grants))
		}
		return nil
	})
}
