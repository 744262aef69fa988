package middleware

import "github.com/gin-gonic/gin"

// contextKey is used for values stored in both the Gin and the request context.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey    = contextKey("logger")
	requestIDKey    = contextKey("requestID")
	adminSubjectKey = contextKey("adminSubject")
)

// GetRequestIDFromContext returns the request id assigned by StructuredLoggingMiddleware.
func GetRequestIDFromContext(c *gin.Context) (string, bool) {
	if v, ok := c.Get(string(requestIDKey)); ok {
		id, ok := v.(string)
		return id, ok
	}
	if v, ok := c.Request.Context().Value(requestIDKey).(string); ok {
		return v, true
	}
	return "", false
}

// GetAdminSubjectFromContext retrieves the subject of the validated admin token.
func GetAdminSubjectFromContext(c *gin.Context) (string, bool) {
	if v, ok := c.Request.Context().Value(adminSubjectKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
