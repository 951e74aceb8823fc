package licenselog

import (
	"time"

	"github.com/google/uuid"
)

type Result string

const (
	ResultValid     Result = "VALID"
	ResultExpired   Result = "EXPIRED"
	ResultBlocked   Result = "BLOCKED"
	ResultInvalid   Result = "INVALID"
	ResultIPBlocked Result = "IP_BLOCKED"
)

// LicenseLog is one verification attempt against an existing license.
// Entries are never updated or removed.
type LicenseLog struct {
	ID        uuid.UUID `db:"id" json:"id"`
	LicenseID uuid.UUID `db:"license_id" json:"license_id"`
	IP        string    `db:"ip" json:"ip"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	Result    Result    `db:"result" json:"result"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
