package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/domain/user"
)

// CreateUserRequest adds a back-office account. Role defaults to MODERATOR.
type CreateUserRequest struct {
	Name     string    `json:"name" binding:"required,max=255"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=8,max=72"`
	Role     user.Role `json:"role" binding:"omitempty,oneof=ADMIN MODERATOR"`
}

type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      user.Role  `json:"role"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewUserResponse(u *user.User) *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if u.CreatedBy.Valid {
		createdBy := u.CreatedBy.UUID
		resp.CreatedBy = &createdBy
	}
	return resp
}
