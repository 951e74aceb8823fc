package memstorage

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/domain/license"
)

// LicenseRepository is an in-process license.Repository used for local runs
// without Postgres and as a test double.
type LicenseRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*license.License
	byKey map[string]uuid.UUID
	now   func() time.Time
}

func NewLicenseRepository() *LicenseRepository {
	return &LicenseRepository{
		byID:  make(map[uuid.UUID]*license.License),
		byKey: make(map[string]uuid.UUID),
		now:   time.Now,
	}
}

var _ license.Repository = (*LicenseRepository)(nil)

func copyLicense(l *license.License) *license.License {
	c := *l
	c.AllowedIPs = slices.Clone(l.AllowedIPs)
	return &c
}

func (r *LicenseRepository) Create(_ context.Context, lic *license.License) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[lic.Key]; exists {
		return uuid.Nil, license.ErrDuplicateKey
	}

	stored := copyLicense(lic)
	stored.ID = uuid.New()
	now := r.now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.byID[stored.ID] = stored
	r.byKey[stored.Key] = stored.ID
	return stored.ID, nil
}

func (r *LicenseRepository) FindByID(_ context.Context, id uuid.UUID) (*license.License, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lic, ok := r.byID[id]
	if !ok {
		return nil, license.ErrNotFound
	}
	return copyLicense(lic), nil
}

func (r *LicenseRepository) FindByKey(_ context.Context, key string) (*license.License, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, license.ErrNotFound
	}
	return copyLicense(r.byID[id]), nil
}

func (r *LicenseRepository) List(_ context.Context, params license.ListParams) ([]*license.License, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*license.License, 0, len(r.byID))
	for _, lic := range r.byID {
		if params.Status != nil {
			if lic.Status != *params.Status {
				continue
			}
		} else if lic.Status == license.StatusDeleted {
			continue
		}
		matched = append(matched, lic)
	}

	asc := params.SortOrder == "ASC"
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].CreatedAt, matched[j].CreatedAt
		if params.SortBy == "expires_at" {
			a, b = matched[i].ExpiresAt, matched[j].ExpiresAt
		}
		if asc {
			return a.Before(b)
		}
		return a.After(b)
	})

	total := int64(len(matched))
	if params.Offset >= len(matched) {
		return []*license.License{}, total, nil
	}
	matched = matched[params.Offset:]
	if params.Limit > 0 && params.Limit < len(matched) {
		matched = matched[:params.Limit]
	}

	out := make([]*license.License, len(matched))
	for i, lic := range matched {
		out[i] = copyLicense(lic)
	}
	return out, total, nil
}

func (r *LicenseRepository) Update(_ context.Context, lic *license.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[lic.ID]
	if !ok {
		return license.ErrNotFound
	}

	updated := copyLicense(lic)
	updated.Key = existing.Key
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.UpdatedAt = r.now()
	r.byID[lic.ID] = updated
	return nil
}

func (r *LicenseRepository) UpdateStatus(_ context.Context, id uuid.UUID, status license.LicenseStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lic, ok := r.byID[id]
	if !ok {
		return license.ErrNotFound
	}
	lic.Status = status
	lic.UpdatedAt = r.now()
	return nil
}

func (r *LicenseRepository) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, lic := range r.byID {
		if lic.Status == license.StatusActive && lic.ExpiresAt.Before(now) {
			lic.Status = license.StatusExpired
			lic.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *LicenseRepository) CountByStatus(_ context.Context) (map[license.LicenseStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[license.LicenseStatus]int64)
	for _, lic := range r.byID {
		counts[lic.Status]++
	}
	return counts, nil
}
