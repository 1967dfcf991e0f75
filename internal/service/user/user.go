package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/repository"
)

type UserService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *UserService {
	return &UserService{storage: storage}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.storage.User().ListUsers(ctx)
}

// UpdateUser replaces profile of the user
// Only the user themself or an admin may do it
func (s *UserService) UpdateUser(ctx context.Context, caller models.Identity, id uuid.UUID, profile models.UserProfile) (models.User, error) {
	if err := checkOwner(caller, id); err != nil {
		return models.User{}, err
	}

	user, err := s.storage.User().UpdateUser(ctx, id, profile)
	if err != nil {
		return user, fmt.Errorf("can't update user. Err: %w", err)
	}
	return user, nil
}

// DeleteUser deletes the account with its reviews, wishlist and transactions
// Only the user themself or an admin may do it
func (s *UserService) DeleteUser(ctx context.Context, caller models.Identity, id uuid.UUID) error {
	if err := checkOwner(caller, id); err != nil {
		return err
	}

	return s.storage.User().DeleteUser(ctx, id)
}

func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role models.Role) (models.User, error) {
	if !role.Valid() {
		return models.User{}, apperrors.ErrInvalidRole
	}

	return s.storage.User().SetRole(ctx, id, role)
}

func checkOwner(caller models.Identity, id uuid.UUID) error {
	if caller.UserID == id || caller.Role == models.RoleAdmin {
		return nil
	}
	return apperrors.ErrNotAccountOwner
}
