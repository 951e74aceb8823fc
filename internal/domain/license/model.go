package license

import (
	"database/sql"
	"slices"
	"time"

	"github.com/google/uuid"
)

type LicenseStatus string

const (
	StatusActive  LicenseStatus = "ACTIVE"
	StatusExpired LicenseStatus = "EXPIRED"
	StatusBlocked LicenseStatus = "BLOCKED"
	StatusDeleted LicenseStatus = "DELETED"
)

// AnyIP in an allow-list admits every caller address.
const AnyIP = "*"

func (s LicenseStatus) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusBlocked, StatusDeleted:
		return true
	}
	return false
}

type License struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Key         string         `db:"key" json:"key"`
	Name        sql.NullString `db:"name" json:"name,omitempty"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	Status      LicenseStatus  `db:"status" json:"status"`
	ExpiresAt   time.Time      `db:"expires_at" json:"expires_at"`
	AllowedIPs  []string       `db:"allowed_ips" json:"allowed_ips"`
	CreatedBy   uuid.NullUUID  `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// IsExpiredAt reports whether the license counts as expired at t, either by
// its stored status or because its expiry timestamp has passed.
func (l *License) IsExpiredAt(t time.Time) bool {
	return l.Status == StatusExpired || l.ExpiresAt.Before(t)
}

// AllowsIP matches ip verbatim against the allow-list. No CIDR matching.
func (l *License) AllowsIP(ip string) bool {
	ips := NormalizeAllowedIPs(l.AllowedIPs)
	return slices.Contains(ips, AnyIP) || slices.Contains(ips, ip)
}

// NormalizeAllowedIPs trims blanks and falls back to the wildcard when
// nothing usable is left.
func NormalizeAllowedIPs(ips []string) []string {
	out := make([]string, 0, len(ips))
	for _, ip := range ips {
		if ip == "" {
			continue
		}
		out = append(out, ip)
	}
	if len(out) == 0 {
		return []string{AnyIP}
	}
	return out
}
