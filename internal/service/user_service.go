package service

import (
	"context"

	"iam/internal/domain"
	"iam/internal/dto"
)

type UserService interface {
	GetUser(ctx context.Context, id domain.UserID) (*dto.UserView, error)
	GetUsers(ctx context.Context, q dto.ListQuery) (*dto.Paginated[dto.UserView], error)
	UpdateUser(ctx context.Context, id domain.UserID, req dto.UpdateUserRequest) (*dto.UserView, error)
	// DeleteUser soft-deletes the user and removes their role memberships.
	DeleteUser(ctx context.Context, id domain.UserID) error
}
