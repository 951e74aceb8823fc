package license

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("license not found")
	ErrUpdateFailed = errors.New("license update failed")
	ErrDuplicateKey = errors.New("license key already exists")
)

type ListParams struct {
	Status    *LicenseStatus
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type Repository interface {
	Create(ctx context.Context, license *License) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*License, error)
	FindByKey(ctx context.Context, key string) (*License, error)
	List(ctx context.Context, params ListParams) ([]*License, int64, error)
	Update(ctx context.Context, license *License) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status LicenseStatus) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[LicenseStatus]int64, error)
}
