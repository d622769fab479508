package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/archetype/archetype/internal/api/response"
	"github.com/archetype/archetype/internal/observability/logger"
)

const (
	ContextRequestID     = response.ContextRequestID
	ContextCorrelationID = response.ContextCorrelationID
	ContextIPAddress     = "ip_address"
	ContextUserAgent     = "user_agent"

	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

const maxCorrelationIDLength = 128

// RequestContext tags every request with a request id, a correlation id
// (taken from the caller when present), the client address and user agent,
// and stores a logger carrying those fields in the request context.
func RequestContext(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()

		correlationID := strings.TrimSpace(c.GetHeader(HeaderCorrelationID))
		if correlationID == "" || len(correlationID) > maxCorrelationIDLength {
			correlationID = requestID
		}

		// Extract IP address - check X-Forwarded-For first (for proxies)
		ipAddress := c.GetHeader("X-Forwarded-For")
		if ipAddress == "" {
			ipAddress = c.GetHeader("X-Real-IP")
		}
		if ipAddress == "" {
			ipAddress = c.ClientIP()
		}
		// Handle comma-separated IPs (take the first one)
		if idx := strings.Index(ipAddress, ","); idx != -1 {
			ipAddress = strings.TrimSpace(ipAddress[:idx])
		}

		c.Set(ContextRequestID, requestID)
		c.Set(ContextCorrelationID, correlationID)
		c.Set(ContextIPAddress, ipAddress)
		c.Set(ContextUserAgent, c.GetHeader("User-Agent"))

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderCorrelationID, correlationID)

		scoped := logger.From(c.Request.Context(), base).With(
			zap.String("request_id", requestID),
			zap.String("correlation_id", correlationID),
		)
		c.Request = c.Request.WithContext(logger.ToContext(c.Request.Context(), scoped))

		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}

func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextCorrelationID)
}

// GetIPAddress retrieves IP address from context
func GetIPAddress(c *gin.Context) string {
	return c.GetString(ContextIPAddress)
}

// GetUserAgent retrieves user agent from context
func GetUserAgent(c *gin.Context) string {
	return c.GetString(ContextUserAgent)
}
