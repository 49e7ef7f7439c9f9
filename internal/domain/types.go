package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type RoleID = uuid.UUID
type PrivilegeID = uuid.UUID
type OtpID = uuid.UUID
