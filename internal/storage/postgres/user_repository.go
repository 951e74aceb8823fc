package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/license-gate/internal/domain/user"
	"github.com/makkenzo/license-gate/internal/ierr"
	"go.uber.org/zap"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger.Named("UserRepository"),
	}
}

var _ user.Repository = (*UserRepository)(nil)

const userColumns = "id, email, name, password_hash, role, created_by, created_at"

func (r *UserRepository) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	query := `
        INSERT INTO users (email, name, password_hash, role, created_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, strings.ToLower(u.Email), u.Name, u.PasswordHash, u.Role, u.CreatedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Warn("User with this email already exists", zap.String("email", u.Email))
			return uuid.Nil, fmt.Errorf("%w: user %s already exists", ierr.ErrConflict, u.Email)
		}
		r.logger.Error("Failed to create user", zap.Error(err))
		return uuid.Nil, fmt.Errorf("database error creating user: %w", err)
	}

	r.logger.Info("User created", zap.String("id", id.String()), zap.String("role", string(u.Role)))
	return id, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE email = $1
    `
	u, err := scanUser(r.db.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		r.logger.Error("Failed to find user by email", zap.Error(err))
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsWithRole(ctx context.Context, role user.Role) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`, role).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check user role existence", zap.String("role", string(role)), zap.Error(err))
		return false, fmt.Errorf("database error checking users: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("database error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			r.logger.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("database error scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete user", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("database error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	r.logger.Info("User deleted", zap.String("id", id.String()))
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedBy,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
