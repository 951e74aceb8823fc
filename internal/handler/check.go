package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-gate/internal/domain/license"
	"github.com/makkenzo/license-gate/internal/handler/middleware"
	"github.com/makkenzo/license-gate/internal/service"
	"go.uber.org/zap"
)

// CheckHandler serves license verification to clients. Whether the rate
// governor runs in front of it is decided by the router.
type CheckHandler struct {
	service *service.LicenseService
	logger  *zap.Logger
}

func NewCheckHandler(service *service.LicenseService, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{
		service: service,
		logger:  logger.Named("CheckHandler"),
	}
}

func (h *CheckHandler) Check(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, license.VerdictKeyRequired)
		return
	}

	verdict := h.service.CheckLicense(c.Request.Context(), key, middleware.ClientIP(c), c.Request.UserAgent())
	c.JSON(http.StatusOK, verdict)
}
