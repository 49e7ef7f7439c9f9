package store

import (
	"context"
	"errors"

	"iam/internal/domain"
	"iam/internal/dto"
	"iam/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleStore struct{ db *gorm.DB }

func (s *Store) Roles() *RoleStore { return &RoleStore{db: s.DB} }

func (r *RoleStore) FindByID(ctx context.Context, id domain.RoleID) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (r *RoleStore) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error; err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (r *RoleStore) FindDefaultRole(ctx context.Context) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.WithContext(ctx).First(&role, "is_default = ?", true).Error; err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (r *RoleStore) FindSystemRole(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).
		First(&role, "name = ? AND role_type = ?", name, domain.RoleTypeSystem).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

// Create re-checks name uniqueness against active rows inside its own
// transaction, independent of any service-level check.
func (r *RoleStore) Create(ctx context.Context, role *domain.Role) error {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Role
		err := tx.Where("name = ?", role.Name).First(&existing).Error
		if err == nil {
			return domain.ErrDuplicateRoleName
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(role).Error
	})
}

func (r *RoleStore) Update(ctx context.Context, role *domain.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup domain.Role
		err := tx.Where("name = ? AND id <> ?", role.Name, role.ID).First(&dup).Error
		if err == nil {
			return domain.ErrDuplicateRoleName
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Save(role).Error
	})
}

// Delete soft-deletes the role and its privilege grants. Memberships pointing
// at the role are removed too so stale edges never resurface in joins.
func (r *RoleStore) Delete(ctx context.Context, id domain.RoleID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&domain.RolePrivilege{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&domain.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Role{}).Error
	})
}

func (r *RoleStore) FindMany(ctx context.Context, q dto.ListQuery) ([]domain.Role, int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.Role{})
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var roles []domain.Role
	err := db.Order("created_at DESC").Offset(q.Offset()).Limit(q.Limit).Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// AssignToUser creates the membership edge unless an active one already
// exists. The check and the insert share a transaction; there is no unique
// index because soft-deleted pairs must stay re-creatable.
func (r *RoleStore) AssignToUser(ctx context.Context, userID domain.UserID, roleID domain.RoleID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.UserRole
		err := tx.Where("user_id = ? AND role_id = ?", userID, roleID).First(&existing).Error
		if err == nil {
			return domain.ErrRoleAlreadyAssigned
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&domain.UserRole{UserID: userID, RoleID: roleID}).Error
	})
}

func (r *RoleStore) RemoveFromUser(ctx context.Context, userID domain.UserID, roleID domain.RoleID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&domain.UserRole{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

func (r *RoleStore) HasPrivilege(ctx context.Context, roleID domain.RoleID, privilegeName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RolePrivilege{}).
		Joins("JOIN privileges ON privileges.id = role_privileges.privilege_id AND privileges.deleted_at IS NULL").
		Joins("JOIN roles ON roles.id = role_privileges.role_id AND roles.deleted_at IS NULL").
		Where("role_privileges.role_id = ? AND privileges.privilege_name = ?", roleID, privilegeName).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RoleStore) GetUserCount(ctx context.Context, roleID domain.RoleID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UserRole{}).
		Joins("JOIN users ON users.id = user_roles.user_id AND users.deleted_at IS NULL").
		Where("user_roles.role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

var _ service.RoleRepository = (*RoleStore)(nil)
