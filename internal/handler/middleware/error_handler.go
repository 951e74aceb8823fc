package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/makkenzo/license-gate/internal/domain/apikey"
	"github.com/makkenzo/license-gate/internal/domain/license"
	"github.com/makkenzo/license-gate/internal/domain/user"
	"github.com/makkenzo/license-gate/internal/handler/dto"
	"github.com/makkenzo/license-gate/internal/ierr"
	"go.uber.org/zap"
)

func ErrorHandlerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("ErrorHandler")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		errResponse := dto.InternalError()

		var ve validator.ValidationErrors

		if errors.As(err, &ve) {
			status = http.StatusBadRequest
			errResponse.Code = dto.CodeValidation
			errResponse.Message = "Input validation failed."
			errResponse.Details = buildValidationErrors(ve)
		} else {
			switch {
			case errors.Is(err, ierr.ErrValidation):
				status = http.StatusBadRequest
				errResponse.Code = dto.CodeValidation
				errResponse.Message = err.Error()
			case errors.Is(err, ierr.ErrUnauthorized), errors.Is(err, ierr.ErrInvalidCredentials),
				errors.Is(err, ierr.ErrInvalidToken), errors.Is(err, ierr.ErrTokenInvalidClaims):
				status = http.StatusUnauthorized
				errResponse.Code = dto.CodeUnauthenticated
				errResponse.Message = "Authentication required or failed."
			case errors.Is(err, ierr.ErrForbidden):
				status = http.StatusForbidden
				errResponse.Code = dto.CodeForbidden
				errResponse.Message = "Access denied."
			case errors.Is(err, ierr.ErrNotFound), errors.Is(err, license.ErrNotFound), errors.Is(err, apikey.ErrAPIKeyNotFound),
				errors.Is(err, user.ErrNotFound):
				status = http.StatusNotFound
				errResponse.Code = dto.CodeNotFound
				errResponse.Message = "The requested resource was not found."
			case errors.Is(err, ierr.ErrConflict), errors.Is(err, license.ErrDuplicateKey):
				status = http.StatusConflict
				errResponse.Code = dto.CodeConflict
				errResponse.Message = err.Error()
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		} else {
			log.Debug("Request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
		}

		c.AbortWithStatusJSON(status, errResponse)
	}
}

func buildValidationErrors(ve validator.ValidationErrors) []dto.FieldError {
	details := make([]dto.FieldError, len(ve))
	for i, fe := range ve {
		details[i] = dto.FieldError{
			Field:   fe.Field(),
			Message: getValidationErrorMsg(fe),
		}
	}
	return details
}

func getValidationErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of [%s]", fe.Field(), fe.Param())
	case "ip|eq=*":
		return fmt.Sprintf("Field '%s' must be an IP address or '*'", fe.Field())
	case "gt":
		if fe.Param() == "" {
			return fmt.Sprintf("Field '%s' must be in the future", fe.Field())
		}
		return fmt.Sprintf("Field '%s' must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("Field '%s' must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("Field '%s' must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Field '%s' failed validation on the '%s' tag", fe.Field(), fe.Tag())
	}
}
