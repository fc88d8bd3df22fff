package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey = "userID"
	roleKey   = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetRole returns the authenticated user's role, defaulting to guest.
func GetRole(c *gin.Context) string {
	if v, ok := c.Get(roleKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return RoleGuest
}

// IsOperator reports whether the caller holds the operator role.
func IsOperator(c *gin.Context) bool {
	return GetRole(c) == RoleOperator
}
