package apikey

import (
	"time"

	"github.com/google/uuid"
)

// APIKey authorises first-party callers of the unguarded check endpoint.
// Only the SHA-256 of the full key is stored.
type APIKey struct {
	ID          uuid.UUID     `db:"id"`
	KeyHash     string        `db:"key_hash"`
	Prefix      string        `db:"prefix"`
	Description string        `db:"description"`
	CreatedBy   uuid.NullUUID `db:"created_by"`
	IsEnabled   bool          `db:"is_enabled"`
	CreatedAt   time.Time     `db:"created_at"`
	LastUsedAt  *time.Time    `db:"last_used_at"`
}

const (
	APIKeyPrefixLength = 8
	APIKeySecretLength = 32
	APIKeyScheme       = "lg"
	APIKeyFormat       = APIKeyScheme + "_%s_%s"
)
