package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/domain/apikey"
)

type CreateAPIKeyRequest struct {
	Description string `json:"description" binding:"required,max=255"`
}

// CreateAPIKeyResponse is the only place the full key is ever shown.
type CreateAPIKeyResponse struct {
	ID          uuid.UUID `json:"id"`
	FullKey     string    `json:"full_key"`
	Prefix      string    `json:"prefix"`
	Description string    `json:"description"`
}

type APIKeyResponse struct {
	ID          uuid.UUID  `json:"id"`
	Prefix      string     `json:"prefix"`
	Description string     `json:"description"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	IsEnabled   bool       `json:"is_enabled"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

func NewAPIKeyResponse(key *apikey.APIKey) *APIKeyResponse {
	resp := &APIKeyResponse{
		ID:          key.ID,
		Prefix:      key.Prefix,
		Description: key.Description,
		IsEnabled:   key.IsEnabled,
		CreatedAt:   key.CreatedAt,
		LastUsedAt:  key.LastUsedAt,
	}
	if key.CreatedBy.Valid {
		createdBy := key.CreatedBy.UUID
		resp.CreatedBy = &createdBy
	}
	return resp
}
