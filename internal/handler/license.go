package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/handler/dto"
	"github.com/makkenzo/license-gate/internal/handler/middleware"
	"github.com/makkenzo/license-gate/internal/ierr"
	"github.com/makkenzo/license-gate/internal/service"
	"go.uber.org/zap"
)

type LicenseHandler struct {
	service *service.LicenseService
	logger  *zap.Logger
}

func NewLicenseHandler(service *service.LicenseService, logger *zap.Logger) *LicenseHandler {
	return &LicenseHandler{
		service: service,
		logger:  logger.Named("LicenseHandler"),
	}
}

func (h *LicenseHandler) Create(c *gin.Context) {
	var req dto.CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind or validate request body", zap.Error(err))
		_ = c.Error(bindError(err))
		return
	}

	var createdBy uuid.UUID
	if claims := middleware.GetUserClaims(c); claims != nil {
		createdBy = claims.UserID()
	}

	createdLicense, err := h.service.CreateLicense(c.Request.Context(), &req, createdBy)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewLicenseResponse(createdLicense))
}

func (h *LicenseHandler) List(c *gin.Context) {
	var req dto.ListLicensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Debug("Failed to bind or validate query parameters", zap.Error(err))
		_ = c.Error(bindError(err))
		return
	}

	licenses, totalCount, err := h.service.ListLicenses(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	licenseResponses := make([]*dto.LicenseResponse, len(licenses))
	for i, lic := range licenses {
		licenseResponses[i] = dto.NewLicenseResponse(lic)
	}

	c.JSON(http.StatusOK, dto.PaginatedLicenseResponse{
		Licenses:   licenseResponses,
		TotalCount: totalCount,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}

func (h *LicenseHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	lic, err := h.service.GetLicenseByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLicenseResponse(lic))
}

func (h *LicenseHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind or validate update request body", zap.String("id", id.String()), zap.Error(err))
		_ = c.Error(bindError(err))
		return
	}

	updatedLicense, err := h.service.UpdateLicense(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLicenseResponse(updatedLicense))
}

func (h *LicenseHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteLicense(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("License deleted via handler", zap.String("id", id.String()))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *LicenseHandler) ListLogs(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.ListLicenseLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	logs, err := h.service.ListLicenseLogs(c.Request.Context(), id, req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := make([]*dto.LicenseLogResponse, len(logs))
	for i, entry := range logs {
		resp[i] = dto.NewLicenseLogResponse(entry)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LicenseHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Debug("Invalid UUID format received", zap.String("id_param", idStr))
		_ = c.Error(fmt.Errorf("%w: invalid license ID format", ierr.ErrValidation))
		return uuid.Nil, false
	}
	return id, true
}
