package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makkenzo/license-gate/internal/domain/apikey"
	"github.com/makkenzo/license-gate/internal/handler/dto"
	"github.com/makkenzo/license-gate/internal/util"
)

const (
	apiKeyHeader = "X-API-Key"
)

// APIKeyAuthMiddleware guards first-party endpoints with a key issued
// through the admin API or cmd/createapikey.
func APIKeyAuthMiddleware(apiKeyRepo apikey.Repository, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("APIKeyAuthMiddleware")
	return func(c *gin.Context) {
		apiKeyFromHeader := c.GetHeader(apiKeyHeader)
		if apiKeyFromHeader == "" {
			log.Debug("API Key header is missing", zap.String("header", apiKeyHeader))
			abortAPIKey(c, http.StatusUnauthorized, dto.CodeUnauthenticated, "API key required")
			return
		}

		prefix, ok := util.ParseAPIKeyPrefix(apiKeyFromHeader)
		if !ok {
			log.Warn("Invalid API key format received")
			abortAPIKey(c, http.StatusUnauthorized, dto.CodeUnauthenticated, "Invalid API key format")
			return
		}

		keyRecord, err := apiKeyRepo.FindByPrefix(c.Request.Context(), prefix)
		if err != nil {
			if errors.Is(err, apikey.ErrAPIKeyNotFound) {
				log.Warn("API key not found or disabled", zap.String("prefix", prefix))
				abortAPIKey(c, http.StatusForbidden, dto.CodeForbidden, "Invalid or disabled API key")
				return
			}

			log.Error("Failed to query API key repository", zap.String("prefix", prefix), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.InternalError())
			return
		}

		receivedKeyHash := util.HashAPIKey(apiKeyFromHeader)
		if subtle.ConstantTimeCompare([]byte(receivedKeyHash), []byte(keyRecord.KeyHash)) != 1 {
			log.Warn("API key hash mismatch", zap.String("prefix", prefix), zap.String("key_id", keyRecord.ID.String()))
			abortAPIKey(c, http.StatusForbidden, dto.CodeForbidden, "Invalid or disabled API key")
			return
		}

		go func(id uuid.UUID) {
			ctxAsync, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if errUpdate := apiKeyRepo.UpdateLastUsed(ctxAsync, id, time.Now().UTC()); errUpdate != nil {
				log.Error("Failed to update API key last used time asynchronously", zap.String("key_id", id.String()), zap.Error(errUpdate))
			}
		}(keyRecord.ID)

		log.Debug("API key validated", zap.String("prefix", prefix))
		c.Next()
	}
}

func abortAPIKey(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.APIErrorResponse{Code: code, Message: message})
}
