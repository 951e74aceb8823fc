package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Expirer flips overdue ACTIVE licenses to EXPIRED and reports how many
// changed.
type Expirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

type LicenseExpireHandler struct {
	expirer Expirer
	logger  *zap.Logger
}

func NewLicenseExpireHandler(expirer Expirer, logger *zap.Logger) *LicenseExpireHandler {
	return &LicenseExpireHandler{
		expirer: expirer,
		logger:  logger.Named("LicenseExpireHandler"),
	}
}

func (h *LicenseExpireHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeLicenseExpire {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	var p ExpireLicensePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.logger.Error("Failed to unmarshal payload for license expiration task", zap.Error(err), zap.ByteString("payload", t.Payload()))
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	h.logger.Info("Processing license expiration check task...")

	updated, err := h.expirer.ExpireOverdue(ctx)
	if err != nil {
		h.logger.Error("License expiration sweep failed", zap.Error(err))
		return fmt.Errorf("expire overdue licenses: %w", err)
	}

	h.logger.Info("License expiration check task finished", zap.Int64("updated_to_expired", updated))
	return nil
}
