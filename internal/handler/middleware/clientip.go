package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const unknownClientIP = "unknown"

// ClientIP resolves the caller address from, in order: the first
// X-Forwarded-For entry, X-Real-IP, CF-Connecting-IP and the connection's
// remote address.
func ClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if ip := c.RemoteIP(); ip != "" {
		return ip
	}
	return unknownClientIP
}
