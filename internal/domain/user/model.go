package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleUser      Role = "USER"
)

type User struct {
	ID           uuid.UUID     `db:"id"`
	Email        string        `db:"email"`
	Name         string        `db:"name"`
	PasswordHash string        `db:"password_hash"`
	Role         Role          `db:"role"`
	CreatedBy    uuid.NullUUID `db:"created_by"`
	CreatedAt    time.Time     `db:"created_at"`
}
