// Package service defines the service contracts and the repository interfaces
// they consume. Repositories are persistence-agnostic; the GORM implementations
// live in internal/store, and tests substitute in-memory fakes.
package service

import (
	"context"
	"errors"
	"time"

	"iam/internal/domain"
	"iam/internal/dto"
)

// ErrNotFound is returned by repository find methods when no active (not
// soft-deleted) record matches. Soft-deleted rows are invisible to every
// lookup and uniqueness check.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	// Create persists a new user, re-checking email/phone uniqueness inside
	// its own transaction.
	Create(ctx context.Context, u *domain.User) error
	// Update persists mutable profile fields, re-checking uniqueness when
	// email or phone changed.
	Update(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id domain.UserID, hash string) error
	MarkVerified(ctx context.Context, id domain.UserID, channel domain.VerificationChannel) error
	SetDefaultRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error
	// Delete soft-deletes the user and their role memberships.
	Delete(ctx context.Context, id domain.UserID) error

	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhoneNumber(ctx context.Context, phone string) (*domain.User, error)
	// FindByIdentifier resolves an email or phone number, whichever matches.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	FindByIDWithRoles(ctx context.Context, id domain.UserID) (*domain.User, []domain.Role, error)
	IsFirstUser(ctx context.Context) (bool, error)
	FindMany(ctx context.Context, q dto.ListQuery) ([]domain.User, int64, error)
	CountByDefaultRole(ctx context.Context, roleID domain.RoleID) (int64, error)
}

type RoleRepository interface {
	FindByID(ctx context.Context, id domain.RoleID) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	FindDefaultRole(ctx context.Context) (*domain.Role, error)
	FindSystemRole(ctx context.Context, name string) (*domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, id domain.RoleID) error
	FindMany(ctx context.Context, q dto.ListQuery) ([]domain.Role, int64, error)

	// AssignToUser rejects a duplicate active assignment with
	// domain.ErrRoleAlreadyAssigned; RemoveFromUser fails with
	// domain.ErrAssignmentNotFound when no active membership exists.
	AssignToUser(ctx context.Context, userID domain.UserID, roleID domain.RoleID) error
	RemoveFromUser(ctx context.Context, userID domain.UserID, roleID domain.RoleID) error

	// HasPrivilege is true iff an active role-privilege row joins the active
	// role to an active privilege with that name.
	HasPrivilege(ctx context.Context, roleID domain.RoleID, privilegeName string) (bool, error)
	GetUserCount(ctx context.Context, roleID domain.RoleID) (int64, error)
}

type PrivilegeRepository interface {
	FindByID(ctx context.Context, id domain.PrivilegeID) (*domain.Privilege, error)
	FindByName(ctx context.Context, name string) (*domain.Privilege, error)
	Create(ctx context.Context, p *domain.Privilege) error
	Update(ctx context.Context, p *domain.Privilege) error
	Delete(ctx context.Context, id domain.PrivilegeID) error
	FindMany(ctx context.Context, q dto.ListQuery) ([]domain.Privilege, int64, error)

	AssignToRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error
	RemoveFromRole(ctx context.Context, roleID domain.RoleID, privilegeID domain.PrivilegeID) error
	FindByRoleID(ctx context.Context, roleID domain.RoleID) ([]domain.Privilege, error)
}

type OtpRepository interface {
	// Create persists the OTP; the daily counter is captured atomically with
	// creation.
	Create(ctx context.Context, otp *domain.Otp) error
	GetDailyCount(ctx context.Context, userID domain.UserID, otpType domain.OtpType) (int, error)
	// Verify returns (nil, nil) when no live row matches; a miss increments
	// the attempt counter on all live rows for (identifier, purpose).
	Verify(ctx context.Context, code, identifier string, purpose domain.OtpPurpose, maxAttempts int) (*domain.Otp, error)
	InvalidateExisting(ctx context.Context, userID domain.UserID, purpose domain.OtpPurpose) error
}

type BlacklistedTokenRepository interface {
	// Add is idempotent; re-adding a blacklisted token is not an error.
	Add(ctx context.Context, token string, userID domain.UserID, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	// Cleanup purges entries past their revocation horizon. Correctness never
	// depends on it running; IsBlacklisted always checks expiry.
	Cleanup(ctx context.Context) (int64, error)
}
