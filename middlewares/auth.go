package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/himique/Industial-Automation/auth"
	"github.com/himique/Industial-Automation/config"
)

// UserKey is the gin context key the middlewares store the resolved user under.
const UserKey = "current_user"

// RequireAuthenticated rejects requests without a valid token for an active
// user. The response never says which check failed.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.RequireAuthenticated(c.Request.Context(), config.DB, c.Request, config.C.SecretKey)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrUnauthenticated.Error()})
			c.Abort()
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

// RequireAdmin rejects everyone but active admins: 401 for authentication
// failures, 403 for a valid non-admin user.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.RequireAdmin(c.Request.Context(), config.DB, c.Request, config.C.SecretKey)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, auth.ErrForbidden) {
				status = http.StatusForbidden
			}
			c.JSON(status, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}
