package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
)

// RequireOperator ensures the authenticated user holds the operator role.
// It MUST be used after auth.AuthRequired middleware.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.GetUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !auth.IsOperator(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: operator access required"})
			return
		}

		c.Next()
	}
}
