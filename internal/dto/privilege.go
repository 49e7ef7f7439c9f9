package dto

import "iam/internal/domain"

type CreatePrivilegeRequest struct {
	PrivilegeName  string                `json:"privilegeName"`
	Description    string                `json:"description"`
	PrivilegeGroup domain.PrivilegeGroup `json:"privilegeGroup"`
}

type UpdatePrivilegeRequest struct {
	PrivilegeName  *string                `json:"privilegeName"`
	Description    *string                `json:"description"`
	PrivilegeGroup *domain.PrivilegeGroup `json:"privilegeGroup"`
}

// PrivilegeCheck is the single authorization decision shape: granted iff no
// requested action is missing.
type PrivilegeCheck struct {
	Granted           bool     `json:"granted"`
	MissingPrivileges []string `json:"missingPrivileges,omitempty"`
}
