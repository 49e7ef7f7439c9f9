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

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

// Create re-checks email/phone uniqueness against active rows inside its own
// transaction, independent of any orchestrator-level check.
func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.User
		err := tx.Where("email = ?", usr.Email).First(&existing).Error
		if err == nil {
			return domain.ErrDuplicateEmail
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		err = tx.Where("phone_number = ?", usr.PhoneNumber).First(&existing).Error
		if err == nil {
			return domain.ErrDuplicatePhone
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(usr).Error
	})
}

func (u *UserStore) Update(ctx context.Context, usr *domain.User) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup domain.User
		err := tx.Where("email = ? AND id <> ?", usr.Email, usr.ID).First(&dup).Error
		if err == nil {
			return domain.ErrDuplicateEmail
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		err = tx.Where("phone_number = ? AND id <> ?", usr.PhoneNumber, usr.ID).First(&dup).Error
		if err == nil {
			return domain.ErrDuplicatePhone
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Save(usr).Error
	})
}

func (u *UserStore) UpdatePassword(ctx context.Context, id domain.UserID, hash string) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

func (u *UserStore) MarkVerified(ctx context.Context, id domain.UserID, channel domain.VerificationChannel) error {
	column := "is_email_verified"
	if channel == domain.ChannelPhone {
		column = "is_phone_verified"
	}
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update(column, true).Error
}

func (u *UserStore) SetDefaultRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("default_role_id", roleID).Error
}

// Delete soft-deletes the user together with their role memberships.
func (u *UserStore) Delete(ctx context.Context, id domain.UserID) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.User{}).Error
	})
}

func (u *UserStore) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *UserStore) FindByPhoneNumber(ctx context.Context, phone string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "phone_number = ?", phone).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *UserStore) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	var user domain.User
	err := u.db.WithContext(ctx).
		Where("email = ? OR phone_number = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *UserStore) FindByIDWithRoles(ctx context.Context, id domain.UserID) (*domain.User, []domain.Role, error) {
	user, err := u.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var roles []domain.Role
	err = u.db.WithContext(ctx).Model(&domain.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id AND user_roles.deleted_at IS NULL").
		Where("user_roles.user_id = ?", id).
		Find(&roles).Error
	if err != nil {
		return nil, nil, err
	}
	return user, roles, nil
}

func (u *UserStore) IsFirstUser(ctx context.Context) (bool, error) {
	var count int64
	// Unscoped on purpose: a soft-deleted first admin must not make the next
	// registration a super admin again.
	if err := u.db.WithContext(ctx).Unscoped().Model(&domain.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

func (u *UserStore) FindMany(ctx context.Context, q dto.ListQuery) ([]domain.User, int64, error) {
	db := u.db.WithContext(ctx).Model(&domain.User{})
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("full_name ILIKE ? OR email ILIKE ? OR phone_number ILIKE ?", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	err := db.Order("created_at DESC").Offset(q.Offset()).Limit(q.Limit).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (u *UserStore) CountByDefaultRole(ctx context.Context, roleID domain.RoleID) (int64, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("default_role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

var _ service.UserRepository = (*UserStore)(nil)
