package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mediremind-backend/internal/auth"
)

const ctxUserIDKey = "userID"

// AuthRequired validates the bearer token and stores the authenticated
// user ID on the request context.
func AuthRequired(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		userID, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

// currentUserID returns the user ID set by AuthRequired.
func currentUserID(c *gin.Context) int64 {
	v, _ := c.Get(ctxUserIDKey)
	id, _ := v.(int64)
	return id
}
