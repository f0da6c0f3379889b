package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/telemetry"
)

const (
	SessionCookie = "sid"

	ContextUserIdKey    = "x-user-id"
	ContextUserEmailKey = "x-user-email"
)

// SessionMiddleware resolves the sid cookie against the session store.
// The resolved user id is the only identity the handlers act on. The
// optional X-User-Email header is carried along for notifications and
// never treated as identity.
func SessionMiddleware(resolver port.SessionResolver, metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)

		if err != nil || sid == "" {
			recordResolution(c, metrics, "missing")
			helper.SendUnauthorizedError(c, "No session")
			c.Abort()
			return
		}

		userId, err := resolver.Resolve(c.Request.Context(), sid)

		if err != nil {
			if errors.Is(err, domain.ErrSessionStoreUnavailable) {
				recordResolution(c, metrics, "store_down")
				helper.SendUnavailableError(c, "Session store unavailable")
			} else {
				recordResolution(c, metrics, "rejected")
				helper.SendUnauthorizedError(c, "Session expired")
			}

			c.Abort()
			return
		}

		recordResolution(c, metrics, "resolved")

		c.Set(ContextUserIdKey, userId)
		c.Set(ContextUserEmailKey, c.GetHeader("X-User-Email"))

		c.Next()
	}
}

func recordResolution(c *gin.Context, metrics *telemetry.AppMetrics, outcome string) {
	if metrics != nil {
		metrics.RecordSessionResolution(c.Request.Context(), outcome)
	}
}

// SessionUserId returns the user id set by SessionMiddleware.
func SessionUserId(c *gin.Context) (int, bool) {
	value, exists := c.Get(ContextUserIdKey)

	if !exists {
		return 0, false
	}

	userId, ok := value.(int)

	return userId, ok
}

// SessionUserEmail returns the optional notification address.
func SessionUserEmail(c *gin.Context) string {
	return c.GetString(ContextUserEmailKey)
}
