package domain

import (
	"time"

	"gorm.io/gorm"
)

type RoleType string

const (
	RoleTypeSystem RoleType = "SYSTEM"
	RoleTypeCustom RoleType = "CUSTOM"
)

// Seeded system role names.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleUser       = "USER"
)

type Role struct {
	ID          RoleID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"type:text;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	RoleType    RoleType       `gorm:"type:text;not null;default:CUSTOM" json:"roleType"`
	IsDefault   bool           `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt   time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Role) TableName() string { return "roles" }

type PrivilegeGroup string

const (
	GroupUserManagement PrivilegeGroup = "USER_MANAGEMENT"
	GroupProfile        PrivilegeGroup = "PROFILE"
	GroupRoleManagement PrivilegeGroup = "ROLE_MANAGEMENT"
	GroupSettings       PrivilegeGroup = "SETTINGS"
	GroupSystem         PrivilegeGroup = "SYSTEM"
)

// Privilege names follow the "resource:action" convention.
type Privilege struct {
	ID             PrivilegeID    `gorm:"type:uuid;primaryKey" json:"id"`
	PrivilegeName  string         `gorm:"type:text;not null" json:"privilegeName"`
	Description    string         `gorm:"type:text" json:"description"`
	PrivilegeGroup PrivilegeGroup `gorm:"type:text" json:"privilegeGroup"`
	CreatedAt      time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Privilege) TableName() string { return "privileges" }

// RolePrivilege is the only authorization-relevant edge; the model is flat,
// roles do not inherit from each other. An active (role, privilege) pair must
// be unique; soft-deleted pairs may be re-created, so the invariant lives in
// the store, not in a database unique index.
type RolePrivilege struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RoleID      RoleID         `gorm:"type:uuid;index;not null" json:"roleId"`
	PrivilegeID PrivilegeID    `gorm:"type:uuid;index;not null" json:"privilegeId"`
	CreatedAt   time.Time      `gorm:"not null" json:"createdAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RolePrivilege) TableName() string { return "role_privileges" }

// UserRole records role membership. The user's active role for authorization
// context is User.DefaultRoleID, which must always reference one of these
// memberships.
type UserRole struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    UserID         `gorm:"type:uuid;index;not null" json:"userId"`
	RoleID    RoleID         `gorm:"type:uuid;index;not null" json:"roleId"`
	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserRole) TableName() string { return "user_roles" }
