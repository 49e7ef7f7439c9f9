package dto

import "iam/internal/domain"

type VerifyAccountRequest struct {
	Code    string                     `json:"code"`
	Channel domain.VerificationChannel `json:"channel"`
}

type ResetPasswordRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type CheckPrivilegeRequest struct {
	Actions []string `json:"actions"`
}
