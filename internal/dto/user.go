package dto

import "iam/internal/domain"

type VerificationView struct {
	Status domain.VerificationStatus `json:"status"`
	Email  bool                      `json:"email"`
	Phone  bool                      `json:"phone"`
}

type UserStatusView struct {
	IsActive     bool             `json:"isActive"`
	Verification VerificationView `json:"verification"`
}

// UserView is the outward user shape; it never carries the password hash.
type UserView struct {
	ID            domain.UserID  `json:"id"`
	FullName      string         `json:"fullName"`
	Email         string         `json:"email"`
	PhoneNumber   string         `json:"phoneNumber"`
	Position      string         `json:"position"`
	DefaultRoleID *domain.RoleID `json:"defaultRoleId"`
	Status        UserStatusView `json:"status"`
}

func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		PhoneNumber:   u.PhoneNumber,
		Position:      u.Position,
		DefaultRoleID: u.DefaultRoleID,
		Status: UserStatusView{
			IsActive: u.IsActive,
			Verification: VerificationView{
				Status: u.VerificationStatus,
				Email:  u.IsEmailVerified,
				Phone:  u.IsPhoneVerified,
			},
		},
	}
}

type UpdateUserRequest struct {
	FullName    *string `json:"fullName"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	Position    *string `json:"position"`
}
