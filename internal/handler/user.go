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

type UserHandler struct {
	service *service.UserService
	logger  *zap.Logger
}

func NewUserHandler(service *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.Named("UserHandler"),
	}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind create user request", zap.Error(err))
		_ = c.Error(bindError(err))
		return
	}

	var createdBy uuid.UUID
	if claims := middleware.GetUserClaims(c); claims != nil {
		createdBy = claims.UserID()
	}

	created, err := h.service.CreateUser(c.Request.Context(), &req, createdBy)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(created))
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := make([]*dto.UserResponse, len(users))
	for i, u := range users {
		resp[i] = dto.NewUserResponse(u)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Delete(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Debug("Invalid UUID format for delete user", zap.String("id_param", idStr))
		_ = c.Error(fmt.Errorf("%w: invalid user id format", ierr.ErrValidation))
		return
	}

	claims := middleware.GetUserClaims(c)
	if claims == nil {
		_ = c.Error(ierr.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id, claims.UserID()); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
