package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeLicenseExpire = "license:expire:check"
)

type ExpireLicensePayload struct {
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`
}

// NewLicenseExpireTask builds the periodic sweep task. Only one copy may sit
// in the queue per hour.
func NewLicenseExpireTask(opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(ExpireLicensePayload{})
	if err != nil {
		return nil, err
	}

	allOpts := append([]asynq.Option{asynq.Unique(1 * time.Hour)}, opts...)
	return asynq.NewTask(TypeLicenseExpire, payloadBytes, allOpts...), nil
}
