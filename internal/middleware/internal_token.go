package middleware

import (
	"log"
	"net/http"
	"os"
	"strings"

	"roombook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// InternalTokenAuth protects internal endpoints (horizon trigger, audit
// reads) with a static bearer token and an optional IP allowlist.
func InternalTokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !internalIPAllowed(c) {
			logInternalAuthFailure(c, http.StatusForbidden, "ip_not_allowed")
			response.Error(c, http.StatusForbidden, response.CodeAuthInvalid, "IP not allowed")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logInternalAuthFailure(c, http.StatusUnauthorized, "missing_auth")
			response.Error(c, http.StatusUnauthorized, response.CodeAuthMissing, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logInternalAuthFailure(c, http.StatusUnauthorized, "invalid_auth_format")
			response.Error(c, http.StatusUnauthorized, response.CodeAuthInvalid, "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		expected := os.Getenv("ROOMBOOK_INTERNAL_TOKEN")
		if expected == "" {
			logInternalAuthFailure(c, http.StatusInternalServerError, "token_not_configured")
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal token is not configured")
			c.Abort()
			return
		}

		if parts[1] != expected {
			logInternalAuthFailure(c, http.StatusForbidden, "invalid_token")
			response.Error(c, http.StatusForbidden, response.CodeAuthInvalid, "Invalid internal token")
			c.Abort()
			return
		}

		c.Next()
	}
}

func internalIPAllowed(c *gin.Context) bool {
	allowed := strings.TrimSpace(os.Getenv("ROOMBOOK_INTERNAL_ALLOWED_IPS"))
	if allowed == "" {
		return true
	}
	clientIP := c.ClientIP()
	for _, ip := range strings.Split(allowed, ",") {
		if strings.TrimSpace(ip) == clientIP {
			return true
		}
	}
	return false
}

func logInternalAuthFailure(c *gin.Context, status int, reason string) {
	log.Printf("internal_auth status=%d request_id=%s reason=%s", status, requestID(c), reason)
}
