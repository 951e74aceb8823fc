package license

type VerdictStatus string

const (
	VerdictValid       VerdictStatus = "valid"
	VerdictExpired     VerdictStatus = "expired"
	VerdictBlocked     VerdictStatus = "blocked"
	VerdictInvalid     VerdictStatus = "invalid"
	VerdictIPBlocked   VerdictStatus = "ip_blocked"
	VerdictRateLimited VerdictStatus = "rate_limited"
)

// Verdict is the answer returned to a client presenting a license key.
type Verdict struct {
	Status  VerdictStatus `json:"status"`
	Message string        `json:"message,omitempty"`
}

var (
	VerdictNotFound      = Verdict{Status: VerdictInvalid, Message: "License not found"}
	VerdictInternalError = Verdict{Status: VerdictInvalid, Message: "Internal error"}
	VerdictKeyRequired   = Verdict{Status: VerdictInvalid, Message: "License key is required"}
)
