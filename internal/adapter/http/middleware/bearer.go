package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

const ContextUserKey = "current-user"

// BearerMiddleware verifies the Authorization bearer token and loads
// the user it names. Expired, malformed and revoked-user tokens all
// come back as the same 401.
func BearerMiddleware(tokens port.TokenProvider, users port.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		token, found := strings.CutPrefix(header, "Bearer ")

		if !found || token == "" {
			unauthorized(c)
			return
		}

		userId, err := tokens.Verify(token)

		if err != nil {
			unauthorized(c)
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userId)

		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIdKey, user.ID)

		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	helper.SendUnauthorizedError(c, "Could not validate credentials")
	c.Abort()
}

// CurrentUser returns the user loaded by BearerMiddleware.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	value, exists := c.Get(ContextUserKey)

	if !exists {
		return domain.User{}, false
	}

	user, ok := value.(domain.User)

	return user, ok
}
