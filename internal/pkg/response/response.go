// Package response renders the API envelope: {"success":true,"data":...}
// on success, {"success":false,"error":{"code","message"[,"details"]}} on
// failure. Clients switch on the error code, never on the message text.
package response

import "github.com/gin-gonic/gin"

// Error codes carried in the envelope.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeBookingConflict   = "BOOKING_CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeAuthMissing       = "AUTH_MISSING"
	CodeAuthInvalid       = "AUTH_INVALID"
	CodeInternal          = "INTERNAL_ERROR"
)

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorWithDetails carries a structured details payload next to the message,
// e.g. the field map of a validation failure.
func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
