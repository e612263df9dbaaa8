package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	contextUserID = "user_id"
	contextEmail  = "user_email"
)

// Middleware authenticates requests carrying a "Bearer <token>" Authorization
// header and stores the caller's identity on the gin context.
func Middleware(tokens *TokenManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.WithError(err).Debug("Token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextEmail, claims.Email)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id, or "" outside an
// authenticated request.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(contextUserID)
}

// CurrentUserEmail returns the authenticated user's email address.
func CurrentUserEmail(c *gin.Context) string {
	return c.GetString(contextEmail)
}
