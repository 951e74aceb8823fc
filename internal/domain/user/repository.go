package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u *User) (uuid.UUID, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsWithRole(ctx context.Context, role Role) (bool, error)
	// List returns all accounts, newest first.
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
