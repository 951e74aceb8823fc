package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-gate/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	licenseService *service.LicenseService
	logger         *zap.Logger
}

func NewDashboardHandler(licenseService *service.LicenseService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		licenseService: licenseService,
		logger:         logger.Named("DashboardHandler"),
	}
}

// GetSummary godoc
// @Summary      Get dashboard summary
// @Description  Counts licenses by status and license checks by result.
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.DashboardSummaryResponse
// @Failure      500 {object} dto.APIErrorResponse
// @Router       /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.licenseService.GetDashboardSummary(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get dashboard summary from service", zap.Error(err))
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
