package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// EventEnqueuer is the subset of the analytics client used here.
type EventEnqueuer interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

// pathsToSkip contains paths that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health": true,
}

// PosthogMiddleware tracks successful API calls, keyed by request id since callers are anonymous.
func PosthogMiddleware(client EventEnqueuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !client.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// "/api/v1/exchange-rates/:from/:to" -> "api_v1_exchange-rates_:from_:to"
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		distinctID, ok := GetAdminSubjectFromContext(c)
		if !ok {
			distinctID, _ = GetRequestIDFromContext(c)
		}
		if distinctID == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		client.Enqueue(distinctID, eventName, props)
	}
}
