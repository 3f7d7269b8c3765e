package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Identity reads the authenticated principal from the X-User-ID header set
// by the fronting gateway and puts it on the request context. Handlers that
// need an actor treat a missing value as anonymous.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-User-ID"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				c.Set("user_id", id)
			}
		}
		c.Next()
	}
}
