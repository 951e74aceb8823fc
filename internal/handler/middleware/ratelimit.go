package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-gate/internal/domain/license"
	"github.com/makkenzo/license-gate/internal/handler/dto"
	"github.com/makkenzo/license-gate/internal/metrics"
	"github.com/makkenzo/license-gate/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
	headerRetryAfter         = "Retry-After"
)

// RateLimitMiddleware admits requests through the governor keyed by client
// IP and rejects the rest with 429 before they reach the handler.
func RateLimitMiddleware(governor *ratelimit.Governor, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("RateLimitMiddleware")
	return func(c *gin.Context) {
		ip := ClientIP(c)
		res := governor.Allow(c.Request.Context(), ip)

		c.Header(headerRateLimitLimit, strconv.Itoa(res.Limit))
		c.Header(headerRateLimitRemaining, strconv.Itoa(res.Remaining))
		c.Header(headerRateLimitReset, strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			metrics.RateLimitDecisions.WithLabelValues("rejected").Inc()
			log.Info("Rate limit exceeded", zap.String("ip", ip), zap.Int64("retry_after", res.RetryAfterSeconds()))

			c.Header(headerRetryAfter, strconv.FormatInt(res.RetryAfterSeconds(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.RateLimitedResponse{
				Status:     license.VerdictRateLimited,
				Message:    "Too many requests. Please try again later.",
				RetryAfter: res.RetryAfterSeconds(),
			})
			return
		}

		metrics.RateLimitDecisions.WithLabelValues("allowed").Inc()
		c.Next()
	}
}
