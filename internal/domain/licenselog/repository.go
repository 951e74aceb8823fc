package licenselog

import (
	"context"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Writer is the append-only side of the audit trail.
type Writer interface {
	Append(ctx context.Context, entry *LicenseLog) error
}

type Reader interface {
	ListByLicense(ctx context.Context, licenseID uuid.UUID, limit int) ([]*LicenseLog, error)
	CountByResult(ctx context.Context) (map[Result]int64, error)
}

type Repository interface {
	Writer
	Reader
}

// ClampPageSize bounds a requested page size to [1, MaxPageSize].
func ClampPageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
