package memstorage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/domain/licenselog"
)

type LicenseLogRepository struct {
	mu      sync.RWMutex
	entries []licenselog.LicenseLog
	now     func() time.Time
}

func NewLicenseLogRepository() *LicenseLogRepository {
	return &LicenseLogRepository{now: time.Now}
}

var _ licenselog.Repository = (*LicenseLogRepository)(nil)

func (r *LicenseLogRepository) Append(_ context.Context, entry *licenselog.LicenseLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *entry
	stored.ID = uuid.New()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}
	r.entries = append(r.entries, stored)
	entry.ID = stored.ID
	entry.CreatedAt = stored.CreatedAt
	return nil
}

// ListByLicense returns the newest entries first. Entries appended later win
// ties on CreatedAt.
func (r *LicenseLogRepository) ListByLicense(_ context.Context, licenseID uuid.UUID, limit int) ([]*licenselog.LicenseLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit = licenselog.ClampPageSize(limit)
	out := make([]*licenselog.LicenseLog, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].LicenseID == licenseID {
			e := r.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *LicenseLogRepository) CountByResult(_ context.Context) (map[licenselog.Result]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[licenselog.Result]int64)
	for _, e := range r.entries {
		counts[e.Result]++
	}
	return counts, nil
}

// Len reports the number of stored entries.
func (r *LicenseLogRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
