package domain

import (
	"time"

	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationInitialRegistered VerificationStatus = "INITIAL_REGISTERED"
)

// VerificationChannel selects which identifier an account-verification step
// applies to.
type VerificationChannel string

const (
	ChannelEmail VerificationChannel = "EMAIL"
	ChannelPhone VerificationChannel = "PHONE"
)

// Email and phone number must be unique among active users only; a
// soft-deleted user's identifiers stay re-registrable, so the invariant lives
// in UserStore's transactional checks, not in a database unique index.
type User struct {
	ID                 UserID             `gorm:"type:uuid;primaryKey" json:"id"`
	FullName           string             `gorm:"type:text;not null" json:"fullName"`
	Email              string             `gorm:"type:citext;index" json:"email"`
	PhoneNumber        string             `gorm:"type:text;index" json:"phoneNumber"`
	Password           string             `gorm:"type:text;not null" json:"-"`
	Position           string             `gorm:"type:text" json:"position"`
	DefaultRoleID      *RoleID            `gorm:"type:uuid" json:"defaultRoleId"`
	IsEmailVerified    bool               `gorm:"not null;default:false" json:"isEmailVerified"`
	IsPhoneVerified    bool               `gorm:"not null;default:false" json:"isPhoneVerified"`
	VerificationStatus VerificationStatus `gorm:"type:text;not null" json:"verificationStatus"`
	IsActive           bool               `gorm:"not null;default:true" json:"isActive"`
	CreatedAt          time.Time          `gorm:"not null" json:"createdAt"`
	UpdatedAt          time.Time          `gorm:"not null" json:"updatedAt"`
	DeletedAt          gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// FullyVerified is derived; there is no separate terminal status row.
func (u *User) FullyVerified() bool { return u.IsEmailVerified && u.IsPhoneVerified }
