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

type PrivilegeStore struct{ db *gorm.DB }

func (s *Store) Privileges() *PrivilegeStore { return &PrivilegeStore{db: s.DB} }

func (p *PrivilegeStore) FindByID(ctx context.Context, id domain.PrivilegeID) (*domain.Privilege, error) {
	var privilege domain.Privilege
	if err := p.db.WithContext(ctx).First(&privilege, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &privilege, nil
}

func (p *PrivilegeStore) FindByName(ctx context.Context, name string) (*domain.Privilege, error) {
	var privilege domain.Privilege
	if err := p.db.WithContext(ctx).First(&privilege, "privilege_name = ?", name).Error; err != nil {
		return nil, notFound(err)
	}
	return &privilege, nil
}

// Create re-checks name uniqueness against active rows inside its own
// transaction, independent of any service-level check.
func (p *PrivilegeStore) Create(ctx context.Context, privilege *domain.Privilege) error {
	if privilege.ID == uuid.Nil {
		privilege.ID = uuid.New()
	}
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Privilege
		err := tx.Where("privilege_name = ?", privilege.PrivilegeName).First(&existing).Error
		if err == nil {
			return domain.ErrDuplicatePrivilegeName
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(privilege).Error
	})
}

func (p *PrivilegeStore) Update(ctx context.Context, privilege *domain.Privilege) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup domain.Privilege
		err := tx.Where("privilege_name = ? AND id <> ?", privilege.PrivilegeName, privilege.ID).First(&dup).Error
		if err == nil {
			return domain.ErrDuplicatePrivilegeName
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Save(privilege).Error
	})
}

func (p *PrivilegeStore) Delete(ctx context.Context, id domain.PrivilegeID) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("privilege_id = ?", id).Delete(&domain.RolePrivilege{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Privilege{}).Error
	})
}

func (p *PrivilegeStore) FindMany(ctx context.Context, q dto.ListQuery) ([]domain.Privilege, int64, error) {
	db := p.db.WithContext(ctx).Model(&domain.Privilege{})
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("privilege_name ILIKE ? OR description ILIKE ?", like, like)
	}
	if q.Group != "" {
		db = db.Where("privilege_group = ?", q.Group)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var privileges []domain.Privilege
	err := db.Order("privilege_group ASC, privilege_name ASC").
		Offset(q.Offset()).Limit(q.Limit).Find(&privileges).Error
	if err != nil {
		return nil, 0, err
	}
	return privileges, total, nil
}

// AssignToRole mirrors RoleStore.AssignToUser: duplicate active grants are
// rejected in-transaction, soft-deleted grants may be re-created.
func (p *PrivilegeStore) AssignToRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.RolePrivilege
		err := tx.Where("role_id = ? AND privilege_id = ?", roleID, privilegeID).First(&existing).Error
		if err == nil {
			return domain.ErrPrivilegeAlreadyGranted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&domain.RolePrivilege{RoleID: roleID, PrivilegeID: privilegeID}).Error
	})
}

func (p *PrivilegeStore) RemoveFromRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error {
	res := p.db.WithContext(ctx).
		Where("role_id = ? AND privilege_id = ?", roleID, privilegeID).
		Delete(&domain.RolePrivilege{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

func (p *PrivilegeStore) FindByRoleID(ctx context.Context, roleID domain.RoleID) ([]domain.Privilege, error) {
	var privileges []domain.Privilege
	err := p.db.WithContext(ctx).Model(&domain.Privilege{}).
		Joins("JOIN role_privileges ON role_privileges.privilege_id = privileges.id AND role_privileges.deleted_at IS NULL").
		Where("role_privileges.role_id = ?", roleID).
		Order("privileges.privilege_group ASC, privileges.privilege_name ASC").
		Find(&privileges).Error
	if err != nil {
		return nil, err
	}
	return privileges, nil
}

var _ service.PrivilegeRepository = (*PrivilegeStore)(nil)
