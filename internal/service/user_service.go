package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/domain/user"
	"github.com/makkenzo/license-gate/internal/handler/dto"
	"github.com/makkenzo/license-gate/internal/ierr"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrSelfDelete is returned when an administrator tries to remove the account
// they are signed in with.
var ErrSelfDelete = fmt.Errorf("%w: you cannot delete your own account", ierr.ErrValidation)

type UserService struct {
	repo   user.Repository
	logger *zap.Logger
}

func NewUserService(repo user.Repository, logger *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger.Named("UserService"),
	}
}

func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, createdBy uuid.UUID) (*user.User, error) {
	role := req.Role
	if role != user.RoleAdmin {
		role = user.RoleModerator
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to hash password", ierr.ErrInternalServer)
	}

	u := &user.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if createdBy != uuid.Nil {
		u.CreatedBy = uuid.NullUUID{UUID: createdBy, Valid: true}
	}

	id, err := s.repo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, ierr.ErrConflict) {
			return nil, fmt.Errorf("%w: user with this email already exists", ierr.ErrConflict)
		}
		return nil, fmt.Errorf("repository error creating user: %w", err)
	}

	created, err := s.repo.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created user (id: %s): %w", id, err)
	}

	s.logger.Info("User created", zap.String("id", id.String()), zap.String("role", string(role)))
	return created, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*user.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository error listing users: %w", err)
	}
	return users, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id, actor uuid.UUID) error {
	if id == actor {
		s.logger.Info("Refused self delete", zap.String("id", id.String()))
		return ErrSelfDelete
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return err
		}
		return fmt.Errorf("repository error deleting user %s: %w", id, err)
	}
	s.logger.Info("User deleted", zap.String("id", id.String()), zap.String("deleted_by", actor.String()))
	return nil
}
