package impl

import (
	"context"
	"errors"
	"log/slog"

	"iam/internal/domain"
	"iam/internal/dto"
	"iam/internal/service"
)

type UserServiceImpl struct {
	Users service.UserRepository
}

func NewUserService(users service.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{Users: users}
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id domain.UserID) (*dto.UserView, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	view := dto.NewUserView(user)
	return &view, nil
}

func (s *UserServiceImpl) GetUsers(ctx context.Context, q dto.ListQuery) (*dto.Paginated[dto.UserView], error) {
	q = q.Normalize()
	users, total, err := s.Users.FindMany(ctx, q)
	if err != nil {
		return nil, domain.Internal("failed to list users", err)
	}
	views := make([]dto.UserView, len(users))
	for i := range users {
		views[i] = dto.NewUserView(&users[i])
	}
	return &dto.Paginated[dto.UserView]{Data: views, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id domain.UserID, req dto.UpdateUserRequest) (*dto.UserView, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Position != nil {
		user.Position = *req.Position
	}

	// The store re-checks email/phone uniqueness inside its transaction.
	if err := s.Users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrDuplicatePhone) {
			return nil, err
		}
		return nil, domain.Internal("failed to update user", err)
	}

	slog.Info("user updated", "user_id", id)
	view := dto.NewUserView(user)
	return &view, nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id domain.UserID) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return domain.Internal("failed to delete user", err)
	}
	slog.Info("user deleted", "user_id", id)
	return nil
}

func (s *UserServiceImpl) findUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	user, err := s.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal("failed to load user", err)
	}
	return user, nil
}
