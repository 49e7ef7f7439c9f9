package dto

import "iam/internal/domain"

type CreateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type RoleWithUserCount struct {
	domain.Role
	UserCount int64 `json:"userCount"`
}

type AssignRolesRequest struct {
	RoleIDs []domain.RoleID `json:"roleIds"`
}

type SwitchRoleRequest struct {
	RoleID domain.RoleID `json:"roleId"`
}

type SwitchRoleResponse struct {
	User        UserView `json:"user"`
	AccessToken string   `json:"accessToken"`
}
